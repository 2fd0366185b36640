package engine

import (
	"context"
	"fmt"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine/batch"
	"github.com/rshade/ecotrack/internal/logging"
)

// ImportError reports the submission that failed validation.
type ImportError struct {
	Row int
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// ImportResult summarizes a finished import.
type ImportResult struct {
	Imported int     `json:"imported"`
	TotalKg  float64 `json:"total_kg"`
	View     View    `json:"view"`
}

// Import records many submissions for userID.
//
// Every row is computed before anything is appended, so an invalid row
// aborts the import with an *ImportError and an unchanged history. Rows are
// then appended in chunks, each chunk in one AppendNext call. A store
// failure midway leaves the earlier chunks recorded.
func (t *Tracker) Import(ctx context.Context, userID string, rows []Submission, onProgress batch.ProgressFunc) (ImportResult, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return ImportResult{}, err
	}

	now := t.now()
	today := activity.DateOf(now)

	pending := make([]activity.Activity, len(rows))
	for i, row := range rows {
		e, err := t.calc.Compute(row.Category, row.Subtype, row.Quantity)
		if err != nil {
			return ImportResult{}, &ImportError{Row: i + 1, Err: err}
		}
		date := row.Date
		if date.IsZero() {
			date = today
		}
		if date.After(today) {
			return ImportResult{}, &ImportError{Row: i + 1, Err: fmt.Errorf("%w: %s", ErrFutureDate, date)}
		}
		pending[i] = activity.FromEmission(userID, date, e, now)
	}

	var result ImportResult
	proc := batch.NewDefaultProcessor[activity.Activity]().WithProgress(onProgress)
	err = proc.Process(ctx, pending, func(ctx context.Context, chunk []activity.Activity, _, offset int) error {
		var buildErr error
		added, err := t.store.AppendNext(ctx, userID, func(existing []activity.Activity) ([]activity.Activity, error) {
			entries, err := t.restore(userID, existing)
			if err != nil {
				buildErr = err
				return nil, err
			}
			out := make([]activity.Activity, 0, len(chunk))
			for i, a := range chunk {
				rec, err := entries.Append(a)
				if err != nil {
					buildErr = &ImportError{Row: offset + i + 1, Err: err}
					return nil, buildErr
				}
				out = append(out, rec)
			}
			return out, nil
		})
		if buildErr != nil {
			return buildErr
		}
		if err != nil {
			return &ImportError{Row: offset + 1, Err: fmt.Errorf("persisting activities: %w", err)}
		}

		for _, rec := range added {
			result.Imported++
			result.TotalKg += rec.Emission
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	result.TotalKg = emission.Round2(result.TotalKg)
	entries, err := t.load(ctx, userID)
	if err != nil {
		return result, err
	}
	result.View = Aggregate(entries, today)

	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "import").
		Str("user_id", userID).
		Int("imported", result.Imported).
		Msg("activities imported")
	return result, nil
}
