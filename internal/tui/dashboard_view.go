package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/greenops"
)

// View renders the dashboard (Bubble Tea interface).
func (m DashboardModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" +
			HelpStyle.Render("r retry • q quit") + "\n"
	case ViewStateLoading:
		return InfoStyle.Render("Loading...") + "\n"
	default:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderBreakdown(),
			m.renderTabs(),
			m.table.View(),
			m.renderStatusBar(),
		)
	}
}

func (m DashboardModel) renderHeader() string {
	v := m.data.View
	title := TitleStyle.Render(fmt.Sprintf("ecotrack • %s • %s", m.data.UserID, v.Today))

	today := LevelStyle(v.TodayTotal, engine.DailyTargetKg).Render(greenops.FormatKg(v.TodayTotal))
	lines := []string{
		title,
		LabelStyle.Render("Today:    ") + today +
			LabelStyle.Render(fmt.Sprintf("  (%s trees today)", greenops.FormatNumber(int64(v.TodayTrees)))),
		LabelStyle.Render("Week:     ") + ValueStyle.Render(greenops.FormatKg(v.WeekTotal)),
		LabelStyle.Render("Lifetime: ") + ValueStyle.Render(greenops.FormatKg(v.RunningTotal)) +
			LabelStyle.Render(fmt.Sprintf("  (%s trees, %d-day streak)",
				greenops.FormatNumber(int64(v.LifetimeTrees)), m.data.Stats.Streak)),
	}
	if eq, err := greenops.Calculate(v.RunningTotal); err == nil && !eq.IsEmpty {
		lines = append(lines, HelpStyle.Render(eq.DisplayText))
	}
	return BoxStyle.Width(m.width - borderPadding).Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) renderBreakdown() string {
	breakdown := m.data.View.CategoryBreakdown
	if len(breakdown) == 0 {
		return HelpStyle.Render("No activity logged today.")
	}

	cats := make([]emission.Category, 0, len(breakdown))
	for c := range breakdown {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	total := m.data.View.TodayTotal
	lines := []string{HeaderStyle.Render("Today by category")}
	for _, c := range cats {
		kg := breakdown[c]
		lines = append(lines, fmt.Sprintf("%-10s %s %s",
			c, Bar(kg, total, barWidth), greenops.FormatFloat(kg, 2)))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := range tabCount {
		if t == m.tab {
			tabs = append(tabs, ActiveTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m DashboardModel) renderStatusBar() string {
	unlocked := 0
	for _, a := range m.data.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	status := fmt.Sprintf("%d activities • %d/%d achievements",
		m.data.View.ActivityCount, unlocked, len(m.data.Achievements))
	return HelpStyle.Render(status + " • tab switch • ↑/↓ scroll • r refresh • q quit")
}
