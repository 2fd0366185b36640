package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
)

// newTodayCmd creates the `today` command.
func newTodayCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's emission total and category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd, func(s *session) error {
				v, err := s.tracker.View(cmd.Context(), s.user)
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), v)
				}
				return renderToday(cmd.OutOrStdout(), v, s.cfg.Output.Precision)
			})
		},
	}
}

// newWeekCmd creates the `week` command.
func newWeekCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show daily totals of the last seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd, func(s *session) error {
				v, err := s.tracker.View(cmd.Context(), s.user)
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), struct {
						Series  []engine.DayTotal `json:"series"`
						TotalKg float64           `json:"total_kg"`
					}{v.WeeklySeries, v.WeekTotal})
				}
				return renderWeek(cmd.OutOrStdout(), v, s.cfg.Output.Precision)
			})
		},
	}
}

// newHistoryCmd creates the `history` command.
func newHistoryCmd(st *cliState) *cobra.Command {
	var (
		date  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged activities, most recent first",
		Example: `  ecotrack history --limit 10
  ecotrack history --date 2026-10-18 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			return st.withSession(cmd, func(s *session) error {
				records, err := s.tracker.History(cmd.Context(), s.user, engine.HistoryFilter{Date: d, Limit: limit})
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), records)
				}
				return renderHistory(cmd.OutOrStdout(), records, s.cfg.Output.Precision)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "only activities of this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of activities (0 = all)")
	return cmd
}

// newStatsCmd creates the `stats` command.
func newStatsCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show lifetime statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd, func(s *session) error {
				stats, err := s.tracker.LifetimeStats(cmd.Context(), s.user)
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), stats)
				}
				return renderStats(cmd.OutOrStdout(), stats, s.cfg.Output.Precision)
			})
		},
	}
}

// newAchievementsCmd creates the `achievements` command.
func newAchievementsCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show achievement progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd, func(s *session) error {
				list, err := s.tracker.Achievements(cmd.Context(), s.user)
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), list)
				}
				return renderAchievements(cmd.OutOrStdout(), list)
			})
		},
	}
}

// newFactorsCmd creates the `factors` command.
func newFactorsCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "factors [category]",
		Short: "List emission factors",
		Example: `  ecotrack factors
  ecotrack factors transport`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withSession(cmd, func(s *session) error {
				catalog := s.tracker.Calculator().Catalog()
				categories := catalog.Categories()
				if len(args) == 1 {
					categories = []emission.Category{emission.Category(args[0])}
				}

				var factors []emission.Factor
				for _, c := range categories {
					fs, err := catalog.Subtypes(c)
					if err != nil {
						return err
					}
					factors = append(factors, fs...)
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), factors)
				}
				return renderFactors(cmd.OutOrStdout(), factors)
			})
		},
	}
}
