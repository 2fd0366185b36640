package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/tui"
)

const (
	// tabPadding is the minimum padding between table columns.
	tabPadding   = 2
	weekBarWidth = 20
)

// isWriterTerminal reports whether w is an *os.File attached to a terminal.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// renderJSON writes v as indented JSON.
func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// style renders text with s on terminals and leaves it plain otherwise.
func style(w io.Writer, s lipgloss.Style, text string) string {
	if isWriterTerminal(w) {
		return s.Render(text)
	}
	return text
}

func heading(w io.Writer, text string) {
	_, _ = fmt.Fprintln(w, style(w, tui.TitleStyle, text))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
}

func kg(v float64, precision int) string {
	return greenops.FormatFloat(v, precision) + " kg CO₂"
}

func quantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func describeActivity(a activity.Activity) string {
	if len(a.Components) == 0 {
		return a.Subtype
	}
	keys := make([]string, 0, len(a.Components))
	for k := range a.Components {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quantity(a.Components[k])
	}
	return a.Subtype + " (" + strings.Join(parts, ", ") + ")"
}

func renderResult(w io.Writer, res engine.Result, precision int) error {
	rec := res.Record
	_, _ = fmt.Fprintf(w, "Logged %s %s on %s: %s\n",
		rec.Category, describeActivity(rec), rec.Date, style(w, tui.ValueStyle, kg(rec.Emission, precision)))
	_, _ = fmt.Fprintf(w, "Trees needed to offset: %s\n", greenops.FormatNumber(int64(res.Stats.TreesNeeded)))
	_, _ = fmt.Fprintf(w, "Today: %s  Week: %s\n",
		kg(res.Stats.View.TodayTotal, precision), kg(res.Stats.View.WeekTotal, precision))

	for _, name := range res.Stats.NewlyUnlocked {
		for _, a := range res.Stats.Achievements {
			if a.Name == name {
				_, _ = fmt.Fprintln(w, style(w, tui.OKStyle, "Achievement unlocked: "+a.Title))
			}
		}
	}
	return nil
}

func renderToday(w io.Writer, v engine.View, precision int) error {
	heading(w, "Today, "+v.Today.String())
	total := kg(v.TodayTotal, precision)
	_, _ = fmt.Fprintf(w, "Total: %s\n", style(w, tui.LevelStyle(v.TodayTotal, engine.DailyTargetKg), total))
	_, _ = fmt.Fprintf(w, "Trees to absorb today: %s\n", greenops.FormatNumber(int64(v.TodayTrees)))

	if len(v.CategoryBreakdown) == 0 {
		_, _ = fmt.Fprintln(w, "No activity logged today.")
		return nil
	}

	cats := make([]emission.Category, 0, len(v.CategoryBreakdown))
	for c := range v.CategoryBreakdown {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "Category\tkg CO₂\tShare")
	_, _ = fmt.Fprintln(tw, "--------\t------\t-----")
	for _, c := range cats {
		share := 0.0
		if v.TodayTotal > 0 {
			share = v.CategoryBreakdown[c] / v.TodayTotal * engine.PercentageMultiplier
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.0f%%\n", c, greenops.FormatFloat(v.CategoryBreakdown[c], precision), share)
	}
	return tw.Flush()
}

func renderWeek(w io.Writer, v engine.View, precision int) error {
	heading(w, "Last 7 days")
	peak := 0.0
	for _, d := range v.WeeklySeries {
		peak = max(peak, d.Kg)
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "Day\tkg CO₂\t")
	_, _ = fmt.Fprintln(tw, "---\t------\t")
	for _, d := range v.WeeklySeries {
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\n",
			d.Date.Time().Weekday().String()[:3], d.Date, greenops.FormatFloat(d.Kg, precision), tui.Bar(d.Kg, peak, weekBarWidth))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Week total: %s\n", kg(v.WeekTotal, precision))
	return nil
}

func renderHistory(w io.Writer, records []activity.Activity, precision int) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No activities found.")
		return nil
	}
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tDate\tCategory\tActivity\tQty\tkg CO₂")
	_, _ = fmt.Fprintln(tw, "--\t----\t--------\t--------\t---\t------")
	for _, a := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Date, a.Category, describeActivity(a), quantity(a.Quantity), greenops.FormatFloat(a.Emission, precision))
	}
	return tw.Flush()
}

func renderStats(w io.Writer, st engine.LifetimeStats, precision int) error {
	heading(w, "Lifetime statistics for "+st.UserID)
	tw := newTable(w)
	_, _ = fmt.Fprintf(tw, "Total emission:\t%s\n", kg(st.TotalKg, precision))
	_, _ = fmt.Fprintf(tw, "Weekly average:\t%s\n", kg(st.WeeklyAverageKg, precision))
	_, _ = fmt.Fprintf(tw, "Trees needed:\t%s\n", greenops.FormatNumber(int64(st.TreesNeeded)))
	_, _ = fmt.Fprintf(tw, "Activities:\t%d\n", st.ActivityCount)
	_, _ = fmt.Fprintf(tw, "Active days:\t%d\n", st.ActiveDays)
	if !st.FirstDate.IsZero() {
		_, _ = fmt.Fprintf(tw, "First / last:\t%s / %s\n", st.FirstDate, st.LastDate)
	}
	_, _ = fmt.Fprintf(tw, "Current streak:\t%d days\n", st.Streak)
	if err := tw.Flush(); err != nil {
		return err
	}

	if eq, err := greenops.Calculate(st.TotalKg); err == nil && !eq.IsEmpty {
		_, _ = fmt.Fprintln(w, eq.DisplayText)
	}
	return nil
}

func renderAchievements(w io.Writer, list []engine.Achievement) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "\tAchievement\tProgress\tGoal")
	for _, a := range list {
		mark := "·"
		if a.Unlocked {
			mark = style(w, tui.OKStyle, "✓")
		}
		progress := ""
		if a.Goal > 0 {
			progress = fmt.Sprintf("%d/%d", a.Progress, a.Goal)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, a.Title, progress, a.Description)
	}
	return tw.Flush()
}

func renderFactors(w io.Writer, factors []emission.Factor) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "Category\tSubtype\tkg CO₂ per unit\tUnit\tAliases")
	_, _ = fmt.Fprintln(tw, "--------\t-------\t---------------\t----\t-------")
	for _, f := range factors {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			f.Category, f.Subtype, quantity(f.KgPerUnit), f.Unit, strings.Join(f.Aliases, ", "))
	}
	return tw.Flush()
}
