package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/logging"
)

// errNoHours indicates `log energy` without any appliance flag.
var errNoHours = errors.New("at least one of --ac, --tv, --lampu or --listrik is required")

// energyFlags are the appliance flags of `log energy`, in display order.
var energyFlags = []string{"ac", "tv", "lampu", "listrik"} //nolint:gochecknoglobals // Fixed flag list.

// newLogCmd creates the log command group.
func newLogCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record an activity",
		Long:  "Record an activity. Its CO₂ emission is computed from the emission catalog and stored.",
	}
	cmd.AddCommand(
		newLogSingleCmd(st, emission.CategoryTransport, "km", "Record a trip", "motor 12"),
		newLogSingleCmd(st, emission.CategoryFood, "portions", "Record a meal", "sapi 1"),
		newLogEnergyCmd(st),
	)
	return cmd
}

// newLogSingleCmd creates `log <category> <subtype> <quantity>`.
func newLogSingleCmd(st *cliState, category emission.Category, unit, short, example string) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     fmt.Sprintf("%s <subtype> <%s>", category, unit),
		Short:   short,
		Example: fmt.Sprintf("  ecotrack log %s %s\n  ecotrack log %s %s --date 2026-10-18", category, example, category, example),
		Args:    cobra.ExactArgs(2), //nolint:mnd // subtype and quantity.
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", emission.ErrInvalidQuantity, args[1])
			}
			d, err := parseDateFlag(date)
			if err != nil {
				return err
			}

			return st.withSession(cmd, func(s *session) error {
				res, err := s.tracker.Submit(cmd.Context(), engine.Submission{
					UserID:   s.user,
					Date:     d,
					Category: category,
					Subtype:  args[0],
					Quantity: qty,
				})
				if err != nil {
					logSubmitFailure(cmd, err)
					return err
				}
				return renderSubmission(cmd, s, res)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "activity date (YYYY-MM-DD, default today)")
	return cmd
}

// newLogEnergyCmd creates `log energy`, a composite daily appliance record.
func newLogEnergyCmd(st *cliState) *cobra.Command {
	var (
		date  string
		hours = make(map[string]*float64, len(energyFlags))
	)

	cmd := &cobra.Command{
		Use:   "energy",
		Short: "Record a day of appliance use",
		Example: `  ecotrack log energy --ac 4 --tv 3
  ecotrack log energy --listrik 6.5 --date 2026-10-18`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDateFlag(date)
			if err != nil {
				return err
			}

			values := make(map[string]float64)
			for _, name := range energyFlags {
				if cmd.Flags().Changed(name) {
					values[name] = *hours[name]
				}
			}
			if len(values) == 0 {
				return errNoHours
			}

			return st.withSession(cmd, func(s *session) error {
				res, err := s.tracker.SubmitComposite(cmd.Context(), engine.CompositeSubmission{
					UserID:   s.user,
					Date:     d,
					Category: emission.CategoryEnergy,
					Hours:    values,
				})
				if err != nil {
					logSubmitFailure(cmd, err)
					return err
				}
				return renderSubmission(cmd, s, res)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "activity date (YYYY-MM-DD, default today)")
	for _, name := range energyFlags {
		hours[name] = new(float64)
	}
	cmd.Flags().Float64Var(hours["ac"], "ac", 0, "air conditioner hours")
	cmd.Flags().Float64Var(hours["tv"], "tv", 0, "TV or computer hours")
	cmd.Flags().Float64Var(hours["lampu"], "lampu", 0, "lighting hours")
	cmd.Flags().Float64Var(hours["listrik"], "listrik", 0, "metered electricity in kWh")
	return cmd
}

func parseDateFlag(v string) (activity.Date, error) {
	if v == "" {
		return activity.Date{}, nil
	}
	d, err := activity.ParseDate(v)
	if err != nil {
		return activity.Date{}, fmt.Errorf("invalid --date: %w", err)
	}
	return d, nil
}

func renderSubmission(cmd *cobra.Command, s *session, res engine.Result) error {
	if s.jsonOutput() {
		return renderJSON(cmd.OutOrStdout(), res)
	}
	return renderResult(cmd.OutOrStdout(), res, s.cfg.Output.Precision)
}

func logSubmitFailure(cmd *cobra.Command, err error) {
	ctx := cmd.Context()
	logging.FromContext(ctx).Debug().Ctx(ctx).
		Err(err).
		Str("command", cmd.CommandPath()).
		Msg("submission rejected")
}
