package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/engine/batch"
)

// csvColumns is the column layout of an import file.
const csvColumns = 4

// errBadCSV indicates a malformed import file.
var errBadCSV = errors.New("malformed import file")

// newImportCmd creates the `import` command.
func newImportCmd(st *cliState) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import activities from a CSV file",
		Long: `Imports activities from a CSV file with the columns

  date,category,subtype,quantity

An optional header row is skipped. An empty date means today. Every row is
validated before anything is recorded, so a bad row leaves the history unchanged.
Use "-" to read from standard input.`,
		Example: `  ecotrack import trips.csv
  cat meals.csv | ecotrack import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			rows, err := ParseImportCSV(in)
			if err != nil {
				return err
			}

			return st.withSession(cmd, func(s *session) error {
				var progress batch.ProgressFunc
				if !quiet && !s.jsonOutput() {
					progress = func(p batch.Snapshot) {
						cmd.PrintErrf("Imported %d/%d (%.0f%%)\n", p.ProcessedItems, p.TotalItems, p.Percent())
					}
				}

				res, err := s.tracker.Import(cmd.Context(), s.user, rows, progress)
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return renderJSON(cmd.OutOrStdout(), res)
				}
				cmd.Printf("Imported %d activities for %s: %s\n",
					res.Imported, s.user, kg(res.TotalKg, s.cfg.Output.Precision))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening import file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// ParseImportCSV reads date,category,subtype,quantity rows.
func ParseImportCSV(r io.Reader) ([]engine.Submission, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []engine.Submission
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadCSV, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}

		var date activity.Date
		if v := strings.TrimSpace(rec[0]); v != "" {
			if date, err = activity.ParseDate(v); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", errBadCSV, line, err)
			}
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: quantity %q is not a number", errBadCSV, line, rec[3])
		}
		out = append(out, engine.Submission{
			Date:     date,
			Category: emission.Category(strings.TrimSpace(rec[1])),
			Subtype:  strings.TrimSpace(rec[2]),
			Quantity: qty,
		})
	}
	return out, nil
}
