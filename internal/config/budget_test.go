package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAlertConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		alert   AlertConfig
		wantErr error
	}{
		{name: "actual 80", alert: AlertConfig{Threshold: 80, Type: AlertTypeActual}},
		{name: "forecasted 100", alert: AlertConfig{Threshold: 100, Type: AlertTypeForecasted}},
		{name: "zero", alert: AlertConfig{Threshold: 0, Type: AlertTypeActual}},
		{name: "negative", alert: AlertConfig{Threshold: -1, Type: AlertTypeActual}, wantErr: ErrAlertThresholdOutOfRange},
		{name: "too large", alert: AlertConfig{Threshold: 1001, Type: AlertTypeActual}, wantErr: ErrAlertThresholdOutOfRange},
		{name: "bad type", alert: AlertConfig{Threshold: 50, Type: "projected"}, wantErr: ErrAlertTypeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alert.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBudgetConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		budget  BudgetConfig
		wantErr error
	}{
		{name: "disabled", budget: BudgetConfig{}},
		{name: "disabled ignores alerts", budget: BudgetConfig{Alerts: []AlertConfig{{Threshold: -5}}}},
		{name: "weekly", budget: BudgetConfig{LimitKg: 35, Period: BudgetPeriodWeekly}},
		{name: "monthly with alerts", budget: BudgetConfig{
			LimitKg: 150, Period: BudgetPeriodMonthly,
			Alerts: []AlertConfig{{Threshold: 80, Type: AlertTypeActual}, {Threshold: 100, Type: AlertTypeForecasted}},
		}},
		{name: "negative", budget: BudgetConfig{LimitKg: -1}, wantErr: ErrBudgetLimitNegative},
		{name: "daily period", budget: BudgetConfig{LimitKg: 5, Period: "daily"}, wantErr: ErrUnsupportedBudgetPeriod},
		{name: "bad alert", budget: BudgetConfig{LimitKg: 5, Alerts: []AlertConfig{{Threshold: 50, Type: "x"}}}, wantErr: ErrAlertTypeInvalid},
		{name: "exit code too large", budget: BudgetConfig{LimitKg: 5, ExitOnThreshold: true, ExitCode: intPtr(300)}, wantErr: ErrExitCodeOutOfRange},
		{name: "exit code ignored when off", budget: BudgetConfig{LimitKg: 5, ExitCode: intPtr(300)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.budget.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBudgetConfig_Accessors(t *testing.T) {
	b := BudgetConfig{}
	assert.False(t, b.IsEnabled())
	assert.Equal(t, BudgetPeriodWeekly, b.GetPeriod())
	assert.Equal(t, 1, b.GetExitCode())

	b = BudgetConfig{LimitKg: 10, Period: BudgetPeriodMonthly, ExitOnThreshold: true}
	assert.True(t, b.IsEnabled())
	assert.Equal(t, BudgetPeriodMonthly, b.GetPeriod())
	assert.Equal(t, DefaultExitCode, b.GetExitCode())

	b.ExitCode = intPtr(0)
	assert.Equal(t, 0, b.GetExitCode(), "warn-only mode")

	b.ExitCode = intPtr(3)
	assert.Equal(t, 3, b.GetExitCode())
}

func TestBudgetConfig_AlertsOfType(t *testing.T) {
	b := BudgetConfig{Alerts: []AlertConfig{
		{Threshold: 50, Type: AlertTypeActual},
		{Threshold: 90, Type: AlertTypeForecasted},
		{Threshold: 100, Type: AlertTypeActual},
	}}
	assert.Len(t, b.AlertsOfType(AlertTypeActual), 2)
	assert.Equal(t, []AlertConfig{{Threshold: 90, Type: AlertTypeForecasted}}, b.AlertsOfType(AlertTypeForecasted))
}

func TestBudgetConfig_YAMLParsing(t *testing.T) {
	doc := `
limit_kg: 38.5
period: weekly
alerts:
  - threshold: 80
    type: actual
  - threshold: 100
    type: forecasted
exit_on_threshold: true
exit_code: 2
`
	var b BudgetConfig
	require.NoError(t, yaml.Unmarshal([]byte(doc), &b))
	assert.InDelta(t, 38.5, b.LimitKg, 1e-12)
	assert.Equal(t, BudgetPeriodWeekly, b.Period)
	require.Len(t, b.Alerts, 2)
	assert.Equal(t, AlertTypeForecasted, b.Alerts[1].Type)
	assert.True(t, b.ExitOnThreshold)
	assert.Equal(t, 2, b.GetExitCode())
	require.NoError(t, b.Validate())
}

func intPtr(n int) *int { return &n }
