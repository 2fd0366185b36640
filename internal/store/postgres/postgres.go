// Package postgres stores activities in a PostgreSQL table through database/sql
// and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/store"
)

// DefaultTable is the activity table name used when none is configured.
const DefaultTable = "activities"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Store is a PostgreSQL-backed activity store.
type Store struct {
	db    *sql.DB
	table string
	owned bool
}

// Open connects to dsn, verifies the connection and ensures the schema exists.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres store: empty dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s, err := New(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true

	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool. The caller keeps ownership of db.
func New(db *sql.DB, table string) (*Store, error) {
	if db == nil {
		return nil, errors.New("postgres store: nil db")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("postgres store: invalid table name %q", table)
	}
	return &Store{db: db, table: table}, nil
}

// Table returns the activity table name.
func (s *Store) Table() string {
	return s.table
}

// EnsureSchema creates the activity table and its user index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	activity_date DATE NOT NULL,
	category TEXT NOT NULL,
	subtype TEXT NOT NULL,
	quantity DOUBLE PRECISION NOT NULL,
	emission_kg DOUBLE PRECISION NOT NULL,
	components JSONB,
	recorded_at TIMESTAMPTZ NOT NULL
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_seq_idx ON %s (user_id, seq)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring activity schema: %w", err)
		}
	}
	return nil
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// AppendNext implements store.Store. It runs in one transaction holding a
// transaction-scoped advisory lock keyed by the user ID, so concurrent
// writers for one user queue up behind each other across processes.
func (s *Store) AppendNext(ctx context.Context, userID string, next store.AppendFunc) ([]activity.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return nil, fmt.Errorf("locking activities of %s: %w", userID, err)
	}

	existing, err := s.query(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	added, err := next(existing)
	if err != nil {
		return nil, err
	}
	if err := store.CheckOwner(userID, added); err != nil {
		return nil, err
	}
	for _, a := range added {
		if err := s.insert(ctx, tx, a); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing activities: %w", err)
	}
	return added, nil
}

// QueryByUser implements store.Store.
func (s *Store) QueryByUser(ctx context.Context, userID string) ([]activity.Activity, error) {
	return s.query(ctx, s.db, userID)
}

func (s *Store) insert(ctx context.Context, q execQuerier, a activity.Activity) error {
	var components any
	if a.Components != nil {
		data, err := json.Marshal(a.Components)
		if err != nil {
			return fmt.Errorf("marshaling components: %w", err)
		}
		components = string(data)
	}

	_, err := q.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (
	id, user_id, activity_date, category, subtype, quantity, emission_kg, components, recorded_at
) VALUES (
	$1, $2, $3::date, $4, $5, $6, $7, $8::jsonb, $9
)`, s.table),
		string(a.ID), a.UserID, a.Date.String(), string(a.Category), a.Subtype,
		a.Quantity, a.Emission, components, a.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting activity %s: %w", a.ID, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q execQuerier, userID string) ([]activity.Activity, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
SELECT id, user_id, activity_date, category, subtype, quantity, emission_kg, components, recorded_at
FROM %s
WHERE user_id = $1
ORDER BY seq ASC`, s.table), userID)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	out := []activity.Activity{}
	for rows.Next() {
		var (
			a          activity.Activity
			id         string
			date       time.Time
			category   string
			components []byte
		)
		if err := rows.Scan(&id, &a.UserID, &date, &category, &a.Subtype,
			&a.Quantity, &a.Emission, &components, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.ID = activity.ID(id)
		a.Date = activity.NewDate(date.Year(), date.Month(), date.Day())
		a.Category = emission.Category(category)
		a.RecordedAt = a.RecordedAt.UTC()
		if len(components) > 0 {
			if err := json.Unmarshal(components, &a.Components); err != nil {
				return nil, fmt.Errorf("%w: activity %s components: %w", store.ErrStoreCorrupted, id, err)
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return out, nil
}

// Close closes the connection pool if Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
