package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/logging"
	"github.com/rshade/ecotrack/internal/report"
)

// newReportCmd creates the `report` command.
func newReportCmd(st *cliState) *cobra.Command {
	var (
		format string
		outs   []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the weekly footprint as XLSX or PDF",
		Long: `Exports the footprint of the last seven days. --out may be repeated to
write several files at once; each file's format comes from --format or, when
that is not set, from the file extension.`,
		Example: `  ecotrack report --format xlsx --out week.xlsx
  ecotrack report --out week.pdf
  ecotrack report --out week.xlsx --out week.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(outs) == 0 {
				return errors.New("--out is required")
			}

			return st.withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				log, err := s.tracker.Log(ctx, s.user)
				if err != nil {
					return err
				}
				stats, err := s.tracker.LifetimeStats(ctx, s.user)
				if err != nil {
					return err
				}

				view := engine.Aggregate(log, s.tracker.Today())
				weekly := report.NewWeekly(log, view, stats, st.now())
				if err := writeReports(ctx, weekly, format, outs); err != nil {
					return err
				}
				for _, out := range outs {
					cmd.Printf("Report written to %s\n", out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "report format: xlsx or pdf (default from --out extension)")
	cmd.Flags().StringArrayVar(&outs, "out", nil, "output file (repeatable)")
	return cmd
}

// writeReports renders and writes every output concurrently, at most
// runtime.NumCPU() at a time. The first failure cancels the rest.
func writeReports(ctx context.Context, weekly report.Weekly, format string, outs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, out := range outs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeReport(gctx, weekly, reportFormat(format, out), out)
		})
	}
	return g.Wait()
}

func writeReport(ctx context.Context, weekly report.Weekly, format, out string) error {
	data, err := report.Build(format, weekly)
	if err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("format", format).
		Str("path", out).
		Int("bytes", len(data)).
		Msg("report written")
	return nil
}

func reportFormat(format, out string) string {
	if format != "" {
		return format
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
}
