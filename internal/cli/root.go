// Package cli implements the ecotrack command line.
package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/ecotrack/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// cliState is shared by the subcommands of one root command.
type cliState struct {
	now       func() time.Time
	logResult *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the ecotrack CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithClock(ver, time.Now)
}

// NewRootCmdWithClock creates the root command with an explicit clock for testability.
func NewRootCmdWithClock(ver string, now func() time.Time) *cobra.Command {
	st := &cliState{now: now}

	cmd := &cobra.Command{
		Use:     "ecotrack",
		Short:   "Personal carbon footprint tracker",
		Long:    "ecotrack: log daily activities, see their CO₂ emissions and the trees needed to offset them",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			result := setupLogging(cmd)
			st.logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(st.logResult)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table or json (default from config)")
	cmd.PersistentFlags().StringP("user", "u", "", "user ID (default from config or ECOTRACK_USER)")
	cmd.PersistentFlags().String("store", "", "store driver: memory, file or postgres (default from config)")

	cmd.AddCommand(
		newLogCmd(st),
		newTodayCmd(st),
		newWeekCmd(st),
		newHistoryCmd(st),
		newStatsCmd(st),
		newAchievementsCmd(st),
		newFactorsCmd(st),
		newBudgetCmd(st),
		newImportCmd(st),
		newReportCmd(st),
		newDashboardCmd(st),
		newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Log 12 km by motorbike and a beef portion
  ecotrack log transport motor 12
  ecotrack log food sapi 1

  # Log a day of appliance use
  ecotrack log energy --ac 4 --tv 3

  # See today's footprint and the last seven days
  ecotrack today
  ecotrack week

  # Check the carbon budget, failing CI when a threshold is crossed
  ecotrack budget --exit-on-threshold

  # Import activities from CSV
  ecotrack import activities.csv

  # Export a weekly report
  ecotrack report --format xlsx --out week.xlsx

  # Interactive dashboard
  ecotrack dashboard

  # Initialize configuration
  ecotrack config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
