// Package report exports a user's weekly footprint as XLSX or PDF documents.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
)

// Supported export formats.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ErrUnknownFormat indicates an export format other than xlsx or pdf.
var ErrUnknownFormat = constError("unknown report format")

type constError string

func (e constError) Error() string { return string(e) }

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category emission.Category
	Kg       float64
}

// Weekly is the content of a weekly report.
type Weekly struct {
	UserID      string
	GeneratedAt time.Time
	View        engine.View
	Stats       engine.LifetimeStats
	// Activities are the records dated inside the weekly series, oldest first.
	Activities []activity.Activity
}

// NewWeekly collects the weekly report of log as of view.Today.
func NewWeekly(log *activity.Log, view engine.View, stats engine.LifetimeStats, generatedAt time.Time) Weekly {
	w := Weekly{
		UserID:      log.UserID(),
		GeneratedAt: generatedAt,
		View:        view,
		Stats:       stats,
	}
	if len(view.WeeklySeries) == 0 {
		return w
	}

	first := view.WeeklySeries[0].Date
	last := view.WeeklySeries[len(view.WeeklySeries)-1].Date
	for _, a := range log.Chronological() {
		if !a.Date.Before(first) && !a.Date.After(last) {
			w.Activities = append(w.Activities, a)
		}
	}
	sort.SliceStable(w.Activities, func(i, j int) bool {
		return w.Activities[i].Date.Before(w.Activities[j].Date)
	})
	return w
}

// Categories returns today's breakdown ordered by descending kg, then name.
func (w Weekly) Categories() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(w.View.CategoryBreakdown))
	for c, kg := range w.View.CategoryBreakdown {
		out = append(out, CategoryTotal{Category: c, Kg: kg})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kg != out[j].Kg {
			return out[i].Kg > out[j].Kg
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Build renders w in the given format.
func Build(format string, w Weekly) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return BuildWeeklyXLSX(w)
	case FormatPDF:
		return BuildWeeklyPDF(w)
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownFormat, format, FormatXLSX, FormatPDF)
	}
}

func describe(a activity.Activity) string {
	if len(a.Components) == 0 {
		return fmt.Sprintf("%s %g", a.Subtype, a.Quantity)
	}
	keys := make([]string, 0, len(a.Components))
	for k := range a.Components {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := a.Subtype
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%g", k, a.Components[k])
	}
	return s
}
