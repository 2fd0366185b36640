// Package engine aggregates activity logs into views and achievements and
// exposes the Tracker, which records submissions against a store.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/logging"
	"github.com/rshade/ecotrack/internal/store"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrMissingUser indicates a request without a user ID.
	ErrMissingUser = constError("user id is required")

	// ErrFutureDate indicates an activity dated after the tracker's today.
	ErrFutureDate = constError("activity date is in the future")
)

// Submission describes one activity to record.
type Submission struct {
	UserID   string            `json:"user_id"`
	Date     activity.Date     `json:"date"` // zero means today
	Category emission.Category `json:"category"`
	Subtype  string            `json:"subtype"`
	Quantity float64           `json:"quantity"`
}

// CompositeSubmission records several subtypes of one category as a single
// activity, e.g. a day of appliance hours.
type CompositeSubmission struct {
	UserID   string             `json:"user_id"`
	Date     activity.Date      `json:"date"`
	Category emission.Category  `json:"category"`
	Hours    map[string]float64 `json:"hours"`
}

// Stats are the figures derived right after a record is appended.
type Stats struct {
	// TreesNeeded offsets the record's own emission over a tree's lifetime.
	TreesNeeded   int               `json:"trees_needed"`
	View          View              `json:"view"`
	Achievements  []Achievement     `json:"achievements"`
	NewlyUnlocked []AchievementName `json:"newly_unlocked,omitempty"`
}

// Result is the outcome of a successful submission.
type Result struct {
	Record activity.Activity `json:"record"`
	Stats  Stats             `json:"stats"`
}

// HistoryFilter narrows History. Zero values select everything.
type HistoryFilter struct {
	Date  activity.Date
	Limit int
}

// LifetimeStats summarize a user's whole history.
type LifetimeStats struct {
	UserID          string        `json:"user_id"`
	TotalKg         float64       `json:"total_kg"`
	WeeklyAverageKg float64       `json:"weekly_average_kg"`
	TreesNeeded     int           `json:"trees_needed"`
	ActivityCount   int           `json:"activity_count"`
	ActiveDays      int           `json:"active_days"`
	FirstDate       activity.Date `json:"first_date"`
	LastDate        activity.Date `json:"last_date"`
	Streak          int           `json:"streak"`
}

// Tracker records activities for many users against one store.
//
// Each request rebuilds the user's log from the store, so the store stays
// the only source of truth. Appends run inside the store's per-user lock,
// which also orders writers in other processes sharing the store.
type Tracker struct {
	calc  *emission.Calculator
	store store.Store
	ids   activity.IDSource
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for today's date and RecordedAt.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDSource sets the identifier source.
func WithIDSource(ids activity.IDSource) Option {
	return func(t *Tracker) { t.ids = ids }
}

// NewTracker returns a Tracker computing with calc and persisting to s.
// A nil calc uses the built-in catalog.
func NewTracker(calc *emission.Calculator, s store.Store, opts ...Option) *Tracker {
	if calc == nil {
		calc = emission.NewCalculator(nil)
	}
	t := &Tracker{
		calc:  calc,
		store: s,
		ids:   activity.NewULIDSource(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Calculator returns the calculator the tracker computes with.
func (t *Tracker) Calculator() *emission.Calculator {
	return t.calc
}

// Today returns the tracker's current local date.
func (t *Tracker) Today() activity.Date {
	return activity.DateOf(t.now())
}

// Submit computes and records a single activity.
// Nothing is appended when the emission cannot be computed.
func (t *Tracker) Submit(ctx context.Context, s Submission) (Result, error) {
	e, err := t.calc.Compute(s.Category, s.Subtype, s.Quantity)
	if err != nil {
		return Result{}, err
	}
	return t.record(ctx, s.UserID, s.Date, e)
}

// SubmitComposite computes and records a composite activity.
func (t *Tracker) SubmitComposite(ctx context.Context, s CompositeSubmission) (Result, error) {
	e, err := t.calc.ComputeComposite(s.Category, s.Hours)
	if err != nil {
		return Result{}, err
	}
	return t.record(ctx, s.UserID, s.Date, e)
}

func (t *Tracker) record(ctx context.Context, userID string, date activity.Date, e emission.Emission) (Result, error) {
	log := logging.FromContext(ctx)

	userID, err := normalizeUser(userID)
	if err != nil {
		return Result{}, err
	}

	now := t.now()
	today := activity.DateOf(now)
	if date.IsZero() {
		date = today
	}
	if date.After(today) {
		return Result{}, fmt.Errorf("%w: %s is after %s", ErrFutureDate, date, today)
	}

	var (
		entries  *activity.Log
		before   []Achievement
		rec      activity.Activity
		buildErr error
	)
	_, err = t.store.AppendNext(ctx, userID, func(existing []activity.Activity) ([]activity.Activity, error) {
		entries, buildErr = t.restore(userID, existing)
		if buildErr != nil {
			return nil, buildErr
		}
		before = EvaluateAchievements(entries, Aggregate(entries, today))
		if rec, buildErr = entries.Append(activity.FromEmission(userID, date, e, now)); buildErr != nil {
			return nil, buildErr
		}
		return []activity.Activity{rec}, nil
	})
	if buildErr != nil {
		return Result{}, buildErr
	}
	if err != nil {
		return Result{}, fmt.Errorf("persisting activity: %w", err)
	}

	view := Aggregate(entries, today)
	after := EvaluateAchievements(entries, view)

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "record").
		Str("user_id", userID).
		Str("activity_id", string(rec.ID)).
		Str("category", string(rec.Category)).
		Str("subtype", rec.Subtype).
		Float64("emission_kg", rec.Emission).
		Msg("activity recorded")

	return Result{
		Record: rec,
		Stats: Stats{
			TreesNeeded:   greenops.LifetimeTrees(rec.Emission),
			View:          view,
			Achievements:  after,
			NewlyUnlocked: newlyUnlocked(before, after),
		},
	}, nil
}

// View returns the aggregate view of userID as of today.
func (t *Tracker) View(ctx context.Context, userID string) (View, error) {
	entries, err := t.snapshot(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return Aggregate(entries, t.Today()), nil
}

// TodayTotal returns the kg recorded for today.
func (t *Tracker) TodayTotal(ctx context.Context, userID string) (float64, error) {
	v, err := t.View(ctx, userID)
	if err != nil {
		return 0, err
	}
	return v.TodayTotal, nil
}

// WeekSeries returns the seven daily totals ending today, oldest first.
func (t *Tracker) WeekSeries(ctx context.Context, userID string) ([]DayTotal, error) {
	return t.Series(ctx, userID, WeekDays)
}

// Series returns the daily totals of the last days dates ending today.
func (t *Tracker) Series(ctx context.Context, userID string, days int) ([]DayTotal, error) {
	entries, err := t.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Series(entries, t.Today(), days), nil
}

// CategoryBreakdown returns today's per-category totals, omitting zeros.
func (t *Tracker) CategoryBreakdown(ctx context.Context, userID string) (map[emission.Category]float64, error) {
	v, err := t.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	return v.CategoryBreakdown, nil
}

// Achievements evaluates every achievement for userID.
func (t *Tracker) Achievements(ctx context.Context, userID string) ([]Achievement, error) {
	entries, err := t.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return EvaluateAchievements(entries, Aggregate(entries, t.Today())), nil
}

// History returns userID's activities, most recently recorded first.
func (t *Tracker) History(ctx context.Context, userID string, f HistoryFilter) ([]activity.Activity, error) {
	entries, err := t.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []activity.Activity
	if f.Date.IsZero() {
		out = entries.All()
	} else {
		out = entries.FilterByDate(f.Date)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// LifetimeStats summarizes userID's whole history.
func (t *Tracker) LifetimeStats(ctx context.Context, userID string) (LifetimeStats, error) {
	entries, err := t.snapshot(ctx, userID)
	if err != nil {
		return LifetimeStats{}, err
	}

	today := t.Today()
	view := Aggregate(entries, today)
	days := DailyTotals(entries)

	st := LifetimeStats{
		UserID:          entries.UserID(),
		TotalKg:         view.RunningTotal,
		WeeklyAverageKg: emission.Round2(view.RunningTotal / WeekDays),
		TreesNeeded:     view.LifetimeTrees,
		ActivityCount:   view.ActivityCount,
		ActiveDays:      len(days),
		Streak:          Streak(entries, today),
	}
	if len(days) > 0 {
		st.FirstDate = days[0].Date
		st.LastDate = days[len(days)-1].Date
	}
	return st, nil
}

// Log returns a snapshot of userID's log for callers that aggregate on their own.
func (t *Tracker) Log(ctx context.Context, userID string) (*activity.Log, error) {
	return t.snapshot(ctx, userID)
}

func (t *Tracker) snapshot(ctx context.Context, userID string) (*activity.Log, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return nil, err
	}
	return t.load(ctx, userID)
}

func (t *Tracker) load(ctx context.Context, userID string) (*activity.Log, error) {
	records, err := t.store.QueryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading activities of %s: %w", userID, err)
	}
	return t.restore(userID, records)
}

func (t *Tracker) restore(userID string, records []activity.Activity) (*activity.Log, error) {
	entries, err := activity.Restore(userID, t.ids, records)
	if err != nil {
		return nil, fmt.Errorf("loading activities of %s: %w", userID, err)
	}
	return entries, nil
}

func normalizeUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrMissingUser
	}
	return userID, nil
}

func newlyUnlocked(before, after []Achievement) []AchievementName {
	var out []AchievementName
	for _, a := range after {
		if a.Unlocked && !Unlocked(before, a.Name) {
			out = append(out, a.Name)
		}
	}
	return out
}
