// Package tui provides the terminal dashboard and shared lipgloss styles.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors.
const (
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("214")
	ColorRed    = lipgloss.Color("196")
	ColorBlue   = lipgloss.Color("39")
	ColorGray   = lipgloss.Color("240")
	ColorLight  = lipgloss.Color("246")
)

// Layout.
const (
	defaultWidth  = 100
	defaultHeight = 30
	borderPadding = 2
	barWidth      = 30
	// Rows taken by the header, bar chart, tabs and status bar.
	chromeHeight = 18
	minTableRows = 3
)

// Shared styles. The CLI renders its tables with them as well.
//
//nolint:gochecknoglobals // lipgloss styles are immutable values.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorGray)

	LabelStyle = lipgloss.NewStyle().Foreground(ColorLight)
	ValueStyle = lipgloss.NewStyle().Bold(true)
	InfoStyle  = lipgloss.NewStyle().Foreground(ColorBlue)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	HelpStyle  = lipgloss.NewStyle().Foreground(ColorGray)

	OKStyle       = lipgloss.NewStyle().Foreground(ColorGreen)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorYellow)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorRed)

	ActiveTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Underline(true).Padding(0, 1)
	InactiveTabStyle = lipgloss.NewStyle().Foreground(ColorGray).Padding(0, 1)

	TableHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Padding(0, 1)
	TableSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// Bar characters.
const (
	barFilled = "█"
	barEmpty  = "░"
)

// LevelStyle picks the style for kg against the daily target: green below
// the target, yellow up to twice the target, red above.
func LevelStyle(kg, target float64) lipgloss.Style {
	switch {
	case kg < target:
		return OKStyle
	case kg < 2*target:
		return WarningStyle
	default:
		return CriticalStyle
	}
}

// Bar renders value as a horizontal bar of width cells scaled to maxValue.
func Bar(value, maxValue float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if maxValue > 0 && value > 0 {
		filled = int(value / maxValue * float64(width))
		if filled == 0 {
			filled = 1
		}
	}
	filled = min(filled, width)
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}
