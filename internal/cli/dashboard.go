package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/tui"
)

// dashboardHistoryLimit caps the history tab.
const dashboardHistoryLimit = 100

// newDashboardCmd creates the `dashboard` command.
func newDashboardCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd, func(s *session) error {
				model := tui.NewDashboardModel(cmd.Context(), dashboardLoader(s))
				p := tea.NewProgram(model,
					tea.WithAltScreen(),
					tea.WithContext(cmd.Context()),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(cmd.OutOrStdout()),
				)
				_, err := p.Run()
				return err
			})
		},
	}
}

// dashboardLoader reads everything the dashboard shows from the tracker.
// The log and the lifetime stats are loaded concurrently.
func dashboardLoader(s *session) tui.Loader {
	return func(ctx context.Context) (tui.Snapshot, error) {
		var (
			log   *activity.Log
			stats engine.LifetimeStats
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			log, err = s.tracker.Log(gctx, s.user)
			return err
		})
		g.Go(func() error {
			var err error
			stats, err = s.tracker.LifetimeStats(gctx, s.user)
			return err
		})
		if err := g.Wait(); err != nil {
			return tui.Snapshot{}, err
		}

		view := engine.Aggregate(log, s.tracker.Today())
		history := log.All()
		if len(history) > dashboardHistoryLimit {
			history = history[:dashboardHistoryLimit]
		}
		return tui.Snapshot{
			UserID:       log.UserID(),
			View:         view,
			Stats:        stats,
			Achievements: engine.EvaluateAchievements(log, view),
			History:      history,
		}, nil
	}
}
