package config

import (
	"errors"
	"fmt"
)

// AlertType represents the type of budget alert evaluation.
type AlertType string

// Valid alert types for budget threshold evaluation.
const (
	// AlertTypeActual triggers when recorded emissions exceed the threshold.
	AlertTypeActual AlertType = "actual"
	// AlertTypeForecasted triggers when the end-of-period forecast exceeds the threshold.
	AlertTypeForecasted AlertType = "forecasted"
)

// Budget periods.
const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"

	DefaultBudgetPeriod = BudgetPeriodWeekly
)

// Budget validation limits.
const (
	MaxThresholdPercent = 1000.0
	MinThresholdPercent = 0.0
)

// Exit code limits (Unix standard).
const (
	MinExitCode     = 0
	MaxExitCode     = 255
	DefaultExitCode = 1
)

// Budget validation errors.
var (
	ErrBudgetLimitNegative      = errors.New("budget limit cannot be negative")
	ErrUnsupportedBudgetPeriod  = errors.New("budget period must be 'weekly' or 'monthly'")
	ErrAlertThresholdOutOfRange = errors.New("alert threshold must be between 0 and 1000")
	ErrAlertTypeInvalid         = errors.New("alert type must be 'actual' or 'forecasted'")
	ErrExitCodeOutOfRange       = errors.New("exit code must be between 0 and 255")
)

// AlertConfig is a percentage of the budget at which the user is warned.
type AlertConfig struct {
	// Threshold is the percentage of the budget consumed (e.g., 80.0 for 80%).
	Threshold float64   `yaml:"threshold" json:"threshold"`
	Type      AlertType `yaml:"type"      json:"type"`
}

// Validate checks if the alert configuration is valid.
func (a AlertConfig) Validate() error {
	if a.Threshold < MinThresholdPercent || a.Threshold > MaxThresholdPercent {
		return fmt.Errorf("%w: got %.2f", ErrAlertThresholdOutOfRange, a.Threshold)
	}
	if a.Type != AlertTypeActual && a.Type != AlertTypeForecasted {
		return fmt.Errorf("%w: got %q", ErrAlertTypeInvalid, a.Type)
	}
	return nil
}

// BudgetConfig is a carbon budget: the kg CO₂ a user aims to stay under per period.
type BudgetConfig struct {
	// LimitKg is the emission limit for the period. Use 0 to disable the budget.
	LimitKg float64 `yaml:"limit_kg"         json:"limit_kg"`
	// Period is "weekly" (Monday to Sunday) or "monthly". Defaults to weekly.
	Period string        `yaml:"period,omitempty" json:"period,omitempty"`
	Alerts []AlertConfig `yaml:"alerts,omitempty" json:"alerts,omitempty"`

	// ExitOnThreshold makes `ecotrack budget` exit non-zero once an alert triggers.
	ExitOnThreshold bool `yaml:"exit_on_threshold,omitempty" json:"exit_on_threshold,omitempty"`
	// ExitCode is used when ExitOnThreshold is set. Defaults to 1; 0 means warn only.
	ExitCode *int `yaml:"exit_code,omitempty" json:"exit_code,omitempty"`
}

// IsEnabled reports whether a limit is configured.
func (b BudgetConfig) IsEnabled() bool {
	return b.LimitKg > 0
}

// GetPeriod returns the budget period, defaulting to weekly.
func (b BudgetConfig) GetPeriod() string {
	if b.Period == "" {
		return DefaultBudgetPeriod
	}
	return b.Period
}

// GetExitCode returns the configured exit code, defaulting to 1 if not set.
// An explicit 0 means the CLI only warns.
func (b BudgetConfig) GetExitCode() int {
	if b.ExitCode != nil {
		return *b.ExitCode
	}
	return DefaultExitCode
}

// Validate checks if the budget configuration is valid.
func (b BudgetConfig) Validate() error {
	if b.LimitKg < 0 {
		return ErrBudgetLimitNegative
	}
	if b.Period != "" && b.Period != BudgetPeriodWeekly && b.Period != BudgetPeriodMonthly {
		return fmt.Errorf("%w: got %q", ErrUnsupportedBudgetPeriod, b.Period)
	}
	if !b.IsEnabled() {
		return nil
	}

	for i, alert := range b.Alerts {
		if err := alert.Validate(); err != nil {
			return fmt.Errorf("alert[%d]: %w", i, err)
		}
	}

	if code := b.GetExitCode(); b.ExitOnThreshold && (code < MinExitCode || code > MaxExitCode) {
		return fmt.Errorf("%w: got %d", ErrExitCodeOutOfRange, code)
	}
	return nil
}

// AlertsOfType returns the alerts of type t.
func (b BudgetConfig) AlertsOfType(t AlertType) []AlertConfig {
	var alerts []AlertConfig
	for _, a := range b.Alerts {
		if a.Type == t {
			alerts = append(alerts, a)
		}
	}
	return alerts
}
