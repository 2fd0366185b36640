package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/greenops"
)

// ViewState is the dashboard's state machine position.
type ViewState int

// Dashboard states.
const (
	ViewStateLoading ViewState = iota
	ViewStateReady
	ViewStateError
	ViewStateQuitting
)

// Tab selects the table shown under the header.
type Tab int

// Dashboard tabs, in display order.
const (
	TabWeek Tab = iota
	TabHistory
	TabAchievements
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabWeek:
		return "Week"
	case TabHistory:
		return "History"
	case TabAchievements:
		return "Achievements"
	default:
		return "Unknown"
	}
}

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyRight    = "right"
	keyLeft     = "left"
	keyRefresh  = "r"
)

// Snapshot is everything the dashboard displays for one user.
type Snapshot struct {
	UserID       string
	View         engine.View
	Stats        engine.LifetimeStats
	Achievements []engine.Achievement
	History      []activity.Activity
}

// Loader fetches a fresh snapshot.
type Loader func(ctx context.Context) (Snapshot, error)

// SnapshotLoadedMsg carries a loaded snapshot.
type SnapshotLoadedMsg struct {
	Snapshot Snapshot
}

// LoadErrorMsg reports a failed load.
type LoadErrorMsg struct {
	Err error
}

// DashboardModel is the Bubble Tea model of `ecotrack dashboard`.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type DashboardModel struct {
	ctx    context.Context
	load   Loader
	state  ViewState
	tab    Tab
	data   Snapshot
	table  table.Model
	width  int
	height int
	err    error
}

// NewDashboardModel returns a dashboard that fetches its data with load.
func NewDashboardModel(ctx context.Context, load Loader) DashboardModel {
	m := DashboardModel{
		ctx:    ctx,
		load:   load,
		state:  ViewStateLoading,
		tab:    TabWeek,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.table = m.buildTable()
	return m
}

// Init starts the first load (Bubble Tea interface).
func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		snap, err := load(ctx)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return SnapshotLoadedMsg{Snapshot: snap}
	}
}

// Update handles messages (Bubble Tea interface).
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTable()
		return m, nil
	case SnapshotLoadedMsg:
		m.data = msg.Snapshot
		m.state = ViewStateReady
		m.err = nil
		m.table = m.buildTable()
		return m, nil
	case LoadErrorMsg:
		m.state = ViewStateError
		m.err = msg.Err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyRefresh:
		m.state = ViewStateLoading
		return m, m.loadCmd()
	case keyTab, keyRight:
		m.tab = (m.tab + 1) % tabCount
		m.table = m.buildTable()
		return m, nil
	case keyShiftTab, keyLeft:
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.table = m.buildTable()
		return m, nil
	}

	if m.state != ViewStateReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// State returns the current state.
func (m DashboardModel) State() ViewState { return m.state }

// Tab returns the selected tab.
func (m DashboardModel) Tab() Tab { return m.tab }

// Err returns the last load error.
func (m DashboardModel) Err() error { return m.err }

func (m DashboardModel) buildTable() table.Model {
	columns, rows := m.tableContent()

	height := max(m.height-chromeHeight, minTableRows)
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

func (m DashboardModel) tableContent() ([]table.Column, []table.Row) {
	switch m.tab {
	case TabHistory:
		columns := []table.Column{
			{Title: "Date", Width: 12},     //nolint:mnd // Column width.
			{Title: "Category", Width: 10}, //nolint:mnd // Column width.
			{Title: "Activity", Width: 24}, //nolint:mnd // Column width.
			{Title: "Qty", Width: 8},       //nolint:mnd // Column width.
			{Title: "kg CO₂", Width: 10},   //nolint:mnd // Column width.
		}
		rows := make([]table.Row, 0, len(m.data.History))
		for _, a := range m.data.History {
			rows = append(rows, table.Row{
				a.Date.String(),
				string(a.Category),
				a.Subtype,
				strconv.FormatFloat(a.Quantity, 'f', -1, 64),
				greenops.FormatFloat(a.Emission, 2),
			})
		}
		return columns, rows

	case TabAchievements:
		columns := []table.Column{
			{Title: "", Width: 2},             //nolint:mnd // Column width.
			{Title: "Achievement", Width: 14}, //nolint:mnd // Column width.
			{Title: "Progress", Width: 10},    //nolint:mnd // Column width.
			{Title: "Goal", Width: 48},        //nolint:mnd // Column width.
		}
		rows := make([]table.Row, 0, len(m.data.Achievements))
		for _, a := range m.data.Achievements {
			mark := "·"
			if a.Unlocked {
				mark = "✓"
			}
			progress := ""
			if a.Goal > 0 {
				progress = fmt.Sprintf("%d/%d", a.Progress, a.Goal)
			}
			rows = append(rows, table.Row{mark, a.Title, progress, a.Description})
		}
		return columns, rows

	default:
		columns := []table.Column{
			{Title: "Day", Width: 12},        //nolint:mnd // Column width.
			{Title: "kg CO₂", Width: 10},     //nolint:mnd // Column width.
			{Title: "", Width: barWidth + 2}, //nolint:mnd // Column width.
		}
		peak := 0.0
		for _, d := range m.data.View.WeeklySeries {
			peak = max(peak, d.Kg)
		}
		rows := make([]table.Row, 0, len(m.data.View.WeeklySeries))
		for _, d := range m.data.View.WeeklySeries {
			rows = append(rows, table.Row{
				d.Date.String(),
				greenops.FormatFloat(d.Kg, 2),
				Bar(d.Kg, peak, barWidth),
			})
		}
		return columns, rows
	}
}
