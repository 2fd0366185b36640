package engine

import (
	"sort"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/greenops"
)

// WeekDays is the length of the weekly series.
const WeekDays = 7

// DayTotal is the summed emission of one calendar date.
type DayTotal struct {
	Date activity.Date `json:"date"`
	Kg   float64       `json:"kg"`
}

// View is the aggregate view of a log as of one reference date.
// It holds no state of its own and is rebuilt from the log on every call.
type View struct {
	Today             activity.Date                 `json:"today"`
	TodayTotal        float64                       `json:"today_total_kg"`
	WeeklySeries      []DayTotal                    `json:"weekly_series"`
	WeekTotal         float64                       `json:"week_total_kg"`
	CategoryBreakdown map[emission.Category]float64 `json:"category_breakdown"`
	RunningTotal      float64                       `json:"running_total_kg"`
	ActivityCount     int                           `json:"activity_count"`
	TodayTrees        int                           `json:"today_trees"`
	LifetimeTrees     int                           `json:"lifetime_trees"`
}

// WeeklyValues returns the kg column of the weekly series.
func (v View) WeeklyValues() []float64 {
	out := make([]float64, len(v.WeeklySeries))
	for i, d := range v.WeeklySeries {
		out[i] = d.Kg
	}
	return out
}

// Aggregate derives the view of log as of today.
//
// Sums are taken over the rounded per-activity emissions in append order;
// the float error that accumulates over many activities is not corrected.
func Aggregate(log *activity.Log, today activity.Date) View {
	records := log.Chronological()

	v := View{
		Today:             today,
		CategoryBreakdown: make(map[emission.Category]float64),
		ActivityCount:     len(records),
	}

	for _, a := range records {
		v.RunningTotal += a.Emission
		if a.Date == today {
			v.TodayTotal += a.Emission
			v.CategoryBreakdown[a.Category] += a.Emission
		}
	}
	for cat, kg := range v.CategoryBreakdown {
		if kg == 0 {
			delete(v.CategoryBreakdown, cat)
		}
	}

	v.WeeklySeries = series(records, today, WeekDays)
	for _, d := range v.WeeklySeries {
		v.WeekTotal += d.Kg
	}

	v.TodayTrees = greenops.DailyTrees(v.TodayTotal)
	v.LifetimeTrees = greenops.LifetimeTrees(v.RunningTotal)
	return v
}

// Series returns the per-date totals of the days calendar dates ending at
// and including end, oldest first. Dates without activity are zero.
func Series(log *activity.Log, end activity.Date, days int) []DayTotal {
	return series(log.Chronological(), end, days)
}

func series(records []activity.Activity, end activity.Date, days int) []DayTotal {
	if days <= 0 {
		return []DayTotal{}
	}

	start := end.AddDays(-(days - 1))
	out := make([]DayTotal, days)
	index := make(map[activity.Date]int, days)
	for i := range out {
		out[i].Date = start.AddDays(i)
		index[out[i].Date] = i
	}

	for _, a := range records {
		if i, ok := index[a.Date]; ok {
			out[i].Kg += a.Emission
		}
	}
	return out
}

// DailyTotals returns one entry per date that has activity, oldest first.
func DailyTotals(log *activity.Log) []DayTotal {
	sums := make(map[activity.Date]float64)
	for _, a := range log.Chronological() {
		sums[a.Date] += a.Emission
	}

	out := make([]DayTotal, 0, len(sums))
	for d, kg := range sums {
		out = append(out, DayTotal{Date: d, Kg: kg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
