package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/tui"
)

// Budget rendering constants.
const (
	budgetBoxWidth   = 60
	budgetBarWidth   = 40
	progressFilled   = "█"
	progressEmpty    = "░"
	maxBarPercentage = 100.0
)

// BudgetExitError carries the exit code for a crossed budget threshold.
// It is used to communicate the exit code from budget evaluation to main.
type BudgetExitError struct {
	ExitCode int
	Reason   string
}

func (e *BudgetExitError) Error() string {
	return e.Reason
}

// newBudgetCmd creates the `budget` command.
func newBudgetCmd(st *cliState) *cobra.Command {
	var (
		limit           float64
		period          string
		exitOnThreshold bool
		exitCode        int
	)

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Compare emissions of the current week or month with the carbon budget",
		Long: `Compares the emissions recorded in the current budget period with the
configured carbon budget (budget.limit_kg) and evaluates its alert thresholds.

With --exit-on-threshold the command exits with --exit-code (default 1) when
any threshold is crossed, which makes it usable as a CI gate.`,
		Example: `  ecotrack budget
  ecotrack budget --limit 35 --period weekly
  ecotrack budget --exit-on-threshold --exit-code 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd, func(s *session) error {
				budget := s.cfg.Budget
				if cmd.Flags().Changed("limit") {
					budget.LimitKg = limit
				}
				if cmd.Flags().Changed("period") {
					budget.Period = period
				}
				if cmd.Flags().Changed("exit-on-threshold") {
					budget.ExitOnThreshold = exitOnThreshold
				}
				if cmd.Flags().Changed("exit-code") {
					budget.ExitCode = &exitCode
				}
				if err := budget.Validate(); err != nil {
					return fmt.Errorf("invalid budget configuration: %w", err)
				}

				status, err := s.tracker.Budget(cmd.Context(), s.user, budget)
				if errors.Is(err, engine.ErrBudgetDisabled) {
					return fmt.Errorf("%w: set budget.limit_kg or pass --limit", err)
				}
				if err != nil {
					return err
				}

				if s.jsonOutput() {
					err = renderJSON(cmd.OutOrStdout(), status)
				} else {
					err = RenderBudgetStatus(cmd.OutOrStdout(), status)
				}
				if err != nil {
					return err
				}
				return checkBudgetExit(cmd, budget, status)
			})
		},
	}

	cmd.Flags().Float64Var(&limit, "limit", 0, "budget limit in kg CO₂ (overrides budget.limit_kg)")
	cmd.Flags().StringVar(&period, "period", "", "budget period: weekly or monthly")
	cmd.Flags().BoolVar(&exitOnThreshold, "exit-on-threshold", false,
		"Exit with non-zero code when budget thresholds are exceeded")
	cmd.Flags().IntVar(&exitCode, "exit-code", config.DefaultExitCode,
		"Exit code to use when budget thresholds are exceeded (0-255)")
	return cmd
}

// checkBudgetExit returns a BudgetExitError when a threshold was crossed
// and exit_on_threshold is enabled. Exit code 0 only warns.
func checkBudgetExit(cmd *cobra.Command, budget config.BudgetConfig, status engine.BudgetStatus) error {
	if !budget.ExitOnThreshold || !status.Triggered() {
		return nil
	}

	reason := exitReason(status)
	exitCode := budget.GetExitCode()
	if exitCode == 0 {
		cmd.PrintErrf("WARNING: %s\n", reason)
		return nil
	}
	return &BudgetExitError{ExitCode: exitCode, Reason: reason}
}

func exitReason(status engine.BudgetStatus) string {
	var crossed []string
	for _, t := range status.Thresholds {
		if t.Triggered {
			crossed = append(crossed, fmt.Sprintf("%s %.0f%%", t.Type, t.Threshold))
		}
	}
	return fmt.Sprintf("carbon budget threshold crossed (%s): %.1f%% of %.2f kg used",
		strings.Join(crossed, ", "), status.PercentUsed, status.LimitKg)
}

// RenderBudgetStatus renders a bordered, colored box on terminals and plain
// text otherwise.
func RenderBudgetStatus(w io.Writer, status engine.BudgetStatus) error {
	if isWriterTerminal(w) {
		return renderStyledBudget(w, status)
	}
	return renderPlainBudget(w, status)
}

func renderStyledBudget(w io.Writer, status engine.BudgetStatus) error {
	var content strings.Builder

	content.WriteString(tui.TitleStyle.Render("CARBON BUDGET"))
	content.WriteString("\n\n")
	fmt.Fprintf(&content, "Budget: %.2f kg CO₂/%s (%s to %s)\n",
		status.LimitKg, status.Period, status.PeriodStart, status.PeriodEnd)
	fmt.Fprintf(&content, "Current: %.2f kg CO₂ (%.1f%%)\n\n", status.CurrentKg, status.PercentUsed)
	content.WriteString(renderProgressBar(status.PercentUsed, budgetBarWidth))

	if alerts := renderAlertMessages(status); alerts != "" {
		content.WriteString("\n\n")
		content.WriteString(alerts)
	}
	if status.ForecastKg > 0 {
		content.WriteString("\n")
		forecast := fmt.Sprintf("Forecast: %.2f kg CO₂ (%.1f%%)", status.ForecastKg, status.PercentForecast)
		content.WriteString(lipgloss.NewStyle().Italic(true).Foreground(tui.ColorLight).Render(forecast))
	}

	box := tui.BoxStyle.Width(budgetBoxWidth).Render(content.String())
	_, err := fmt.Fprintln(w, box)
	return err
}

func renderPlainBudget(w io.Writer, status engine.BudgetStatus) error {
	lines := []string{
		"CARBON BUDGET",
		"=============",
		fmt.Sprintf("Budget: %.2f kg CO₂/%s (%s to %s)", status.LimitKg, status.Period, status.PeriodStart, status.PeriodEnd),
		fmt.Sprintf("Current: %.2f kg CO₂ (%.1f%%)", status.CurrentKg, status.PercentUsed),
		fmt.Sprintf("Status: %s", strings.ToUpper(string(status.Health))),
	}
	if status.ForecastKg > 0 {
		lines = append(lines, fmt.Sprintf("Forecast: %.2f kg CO₂ (%.1f%%)", status.ForecastKg, status.PercentForecast))
	}
	for _, t := range status.Thresholds {
		if t.Triggered {
			lines = append(lines, formatAlertMessage(t))
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// renderProgressBar renders a colored bar capped at 100% with a percentage label.
func renderProgressBar(percentage float64, width int) string {
	capped := min(max(percentage, 0), maxBarPercentage)
	filledWidth := int(capped / maxBarPercentage * float64(width))

	var barStyle lipgloss.Style
	switch engine.HealthFromPercentage(percentage) {
	case engine.HealthExceeded, engine.HealthCritical:
		barStyle = tui.CriticalStyle
	case engine.HealthWarning:
		barStyle = tui.WarningStyle
	default:
		barStyle = tui.OKStyle
	}

	filled := barStyle.Render(strings.Repeat(progressFilled, filledWidth))
	empty := lipgloss.NewStyle().Foreground(tui.ColorGray).Render(strings.Repeat(progressEmpty, width-filledWidth))

	label := fmt.Sprintf(" %.0f%%", percentage)
	if percentage >= engine.HealthThresholdExceeded {
		label = tui.ErrorStyle.Render(label)
	}
	return filled + empty + label
}

func renderAlertMessages(status engine.BudgetStatus) string {
	var messages []string
	for _, t := range status.Thresholds {
		if t.Triggered {
			messages = append(messages, tui.WarningStyle.Bold(true).Render("⚠ "+formatAlertMessage(t)))
		}
	}
	return strings.Join(messages, "\n")
}

// formatAlertMessage returns "WARNING - <type> emissions exceed <threshold>%".
func formatAlertMessage(t engine.ThresholdResult) string {
	kind := "recorded"
	if t.Type == config.AlertTypeForecasted {
		kind = "forecasted"
	}
	return fmt.Sprintf("WARNING - %s emissions exceed %.0f%%", kind, t.Threshold)
}
