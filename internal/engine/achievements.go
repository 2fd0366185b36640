package engine

import (
	"github.com/rshade/ecotrack/internal/activity"
)

// Achievement thresholds.
const (
	// DailyTargetKg is the daily footprint baseline below which a day counts as low carbon.
	DailyTargetKg = 5.5

	// WeekWarriorGoal is the number of logged activities, on any days, that unlocks WeekWarrior.
	WeekWarriorGoal = 7

	// EcoHeroStreakDays is the number of consecutive calendar dates, ending today,
	// that must each carry at least one activity to unlock EcoHero.
	EcoHeroStreakDays = 30
)

// AchievementName identifies a milestone.
type AchievementName string

// Known achievements, in display order.
const (
	EcoStarter  AchievementName = "eco_starter"
	WeekWarrior AchievementName = "week_warrior"
	LowCarbon   AchievementName = "low_carbon"
	EcoHero     AchievementName = "eco_hero"
)

// Achievement is the unlock state of one milestone. It is recomputed on
// every evaluation and never persisted.
type Achievement struct {
	Name        AchievementName `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Unlocked    bool            `json:"unlocked"`
	Progress    int             `json:"progress,omitempty"`
	Goal        int             `json:"goal,omitempty"`
}

// EvaluateAchievements returns the state of every achievement for log as of view.Today.
// view must have been produced by Aggregate over the same log.
func EvaluateAchievements(log *activity.Log, view View) []Achievement {
	count := log.Len()
	streak := Streak(log, view.Today)

	return []Achievement{
		{
			Name:        EcoStarter,
			Title:       "Eco Starter",
			Description: "Log your first activity",
			Unlocked:    count > 0,
			Progress:    min(count, 1),
			Goal:        1,
		},
		{
			Name:        WeekWarrior,
			Title:       "Week Warrior",
			Description: "Log 7 activities",
			Unlocked:    count >= WeekWarriorGoal,
			Progress:    min(count, WeekWarriorGoal),
			Goal:        WeekWarriorGoal,
		},
		{
			Name:        LowCarbon,
			Title:       "Low Carbon",
			Description: "Keep today's footprint above zero and under 5.5 kg CO₂",
			Unlocked:    view.TodayTotal > 0 && view.TodayTotal < DailyTargetKg,
		},
		{
			Name:        EcoHero,
			Title:       "Eco Hero",
			Description: "Log at least one activity every day for 30 days",
			Unlocked:    streak >= EcoHeroStreakDays,
			Progress:    min(streak, EcoHeroStreakDays),
			Goal:        EcoHeroStreakDays,
		},
	}
}

// Streak counts the consecutive calendar dates ending at and including today
// that each have at least one activity. It is 0 when today has none.
func Streak(log *activity.Log, today activity.Date) int {
	dates := log.Dates()
	n := 0
	for d := today; ; d = d.AddDays(-1) {
		if _, ok := dates[d]; !ok {
			return n
		}
		n++
	}
}

// Unlocked reports whether the named achievement is unlocked in list.
func Unlocked(list []Achievement, name AchievementName) bool {
	for _, a := range list {
		if a.Name == name {
			return a.Unlocked
		}
	}
	return false
}
