package engine

import (
	"context"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/logging"
)

// ErrBudgetDisabled indicates a budget without a positive limit.
var ErrBudgetDisabled = constError("carbon budget is not configured")

// PercentageMultiplier converts a ratio to a percentage.
const PercentageMultiplier = 100.0

// Health threshold constants define the boundaries for budget health.
const (
	HealthThresholdWarning  = 80.0
	HealthThresholdCritical = 90.0
	HealthThresholdExceeded = 100.0
)

// BudgetHealth classifies how much of a budget is used.
type BudgetHealth string

// Budget health levels, from best to worst.
const (
	HealthOK       BudgetHealth = "ok"
	HealthWarning  BudgetHealth = "warning"
	HealthCritical BudgetHealth = "critical"
	HealthExceeded BudgetHealth = "exceeded"
)

// HealthFromPercentage maps a utilization percentage to a health level.
//
//   - OK: below 80%
//   - WARNING: 80% to below 90%
//   - CRITICAL: 90% to below 100%
//   - EXCEEDED: 100% and above
func HealthFromPercentage(percentageUsed float64) BudgetHealth {
	switch {
	case percentageUsed >= HealthThresholdExceeded:
		return HealthExceeded
	case percentageUsed >= HealthThresholdCritical:
		return HealthCritical
	case percentageUsed >= HealthThresholdWarning:
		return HealthWarning
	default:
		return HealthOK
	}
}

// ThresholdResult is the evaluation of one budget alert.
type ThresholdResult struct {
	Threshold   float64          `json:"threshold"`
	Type        config.AlertType `json:"type"`
	Utilization float64          `json:"utilization"`
	Triggered   bool             `json:"triggered"`
}

// BudgetStatus is a carbon budget evaluated against a log.
type BudgetStatus struct {
	Period          string            `json:"period"`
	PeriodStart     activity.Date     `json:"period_start"`
	PeriodEnd       activity.Date     `json:"period_end"`
	LimitKg         float64           `json:"limit_kg"`
	CurrentKg       float64           `json:"current_kg"`
	ForecastKg      float64           `json:"forecast_kg"`
	PercentUsed     float64           `json:"percent_used"`
	PercentForecast float64           `json:"percent_forecast"`
	Health          BudgetHealth      `json:"health"`
	Thresholds      []ThresholdResult `json:"thresholds"`
}

// Triggered reports whether any alert threshold has been crossed.
func (s BudgetStatus) Triggered() bool {
	for _, t := range s.Thresholds {
		if t.Triggered {
			return true
		}
	}
	return false
}

// DefaultThresholds are applied when a budget configures no alerts:
// 50%, 80% and 100% of recorded emissions.
func DefaultThresholds() []config.AlertConfig {
	return []config.AlertConfig{
		{Threshold: 50, Type: config.AlertTypeActual},
		{Threshold: 80, Type: config.AlertTypeActual},
		{Threshold: 100, Type: config.AlertTypeActual},
	}
}

// PeriodBounds returns the first and last date of the budget period containing today.
// Weeks run Monday to Sunday.
func PeriodBounds(period string, today activity.Date) (activity.Date, activity.Date) {
	if period == config.BudgetPeriodMonthly {
		start := activity.NewDate(today.Year, today.Month, 1)
		end := activity.NewDate(today.Year, today.Month+1, 1).AddDays(-1)
		return start, end
	}

	offset := (int(today.Time().Weekday()) + 6) % 7 // days since Monday
	start := today.AddDays(-offset)
	return start, start.AddDays(WeekDays - 1)
}

// Forecast extrapolates current emissions linearly over the whole period,
// counting today as elapsed.
func Forecast(currentKg float64, start, end, today activity.Date) float64 {
	if currentKg == 0 || today.Before(start) {
		return currentKg
	}
	elapsed := start.DaysUntil(today) + 1
	total := start.DaysUntil(end) + 1
	if elapsed >= total {
		return currentKg
	}
	return currentKg / float64(elapsed) * float64(total)
}

// EvaluateBudget measures log against budget for the period containing today.
func EvaluateBudget(log *activity.Log, budget config.BudgetConfig, today activity.Date) (BudgetStatus, error) {
	if !budget.IsEnabled() {
		return BudgetStatus{}, ErrBudgetDisabled
	}

	period := budget.GetPeriod()
	start, end := PeriodBounds(period, today)

	var current float64
	for _, a := range log.Chronological() {
		if !a.Date.Before(start) && !a.Date.After(today) {
			current += a.Emission
		}
	}

	forecast := Forecast(current, start, end, today)
	st := BudgetStatus{
		Period:          period,
		PeriodStart:     start,
		PeriodEnd:       end,
		LimitKg:         budget.LimitKg,
		CurrentKg:       current,
		ForecastKg:      forecast,
		PercentUsed:     current / budget.LimitKg * PercentageMultiplier,
		PercentForecast: forecast / budget.LimitKg * PercentageMultiplier,
	}
	st.Health = HealthFromPercentage(st.PercentUsed)

	alerts := budget.Alerts
	if len(alerts) == 0 {
		alerts = DefaultThresholds()
	}
	for _, a := range alerts {
		util := st.PercentUsed
		if a.Type == config.AlertTypeForecasted {
			util = st.PercentForecast
		}
		st.Thresholds = append(st.Thresholds, ThresholdResult{
			Threshold:   a.Threshold,
			Type:        a.Type,
			Utilization: util,
			Triggered:   util >= a.Threshold,
		})
	}
	return st, nil
}

// Budget evaluates budget for userID as of today.
func (t *Tracker) Budget(ctx context.Context, userID string, budget config.BudgetConfig) (BudgetStatus, error) {
	entries, err := t.snapshot(ctx, userID)
	if err != nil {
		return BudgetStatus{}, err
	}
	st, err := EvaluateBudget(entries, budget, t.Today())
	if err != nil {
		return BudgetStatus{}, err
	}

	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "budget").
		Str("user_id", entries.UserID()).
		Str("health", string(st.Health)).
		Float64("percent_used", st.PercentUsed).
		Msg("budget evaluated")
	return st, nil
}
