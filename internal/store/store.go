// Package store defines the persistence contract for activity records.
//
// Implementations live in subpackages: memory (process-local), file (one JSON
// document guarded by a lockfile) and postgres (database/sql over pgx).
package store

import (
	"context"
	"fmt"

	"github.com/rshade/ecotrack/internal/activity"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrStoreCorrupted indicates persisted state that cannot be decoded.
	// Callers should abort rather than start over with an empty history.
	ErrStoreCorrupted = constError("activity store corrupted")

	// ErrUnknownDriver indicates a store driver name that is not supported.
	ErrUnknownDriver = constError("unknown store driver")
)

// AppendFunc derives the activities to append from a user's current
// records, given in append order.
type AppendFunc func(existing []activity.Activity) ([]activity.Activity, error)

// Store persists activities. Implementations must be safe for concurrent use.
type Store interface {
	// AppendNext reads userID's records, hands them to next and persists what
	// it returns, holding the store's lock for userID from the read to the
	// write. Writers sharing the store, in this process or another, never
	// interleave there, so IDs assigned inside next stay in order.
	// Nothing is persisted when next fails.
	AppendNext(ctx context.Context, userID string, next AppendFunc) ([]activity.Activity, error)

	// QueryByUser returns every activity of userID in append order.
	QueryByUser(ctx context.Context, userID string) ([]activity.Activity, error)

	// Close releases any resources held by the store.
	Close() error
}

// CheckOwner verifies that every activity in added belongs to userID.
func CheckOwner(userID string, added []activity.Activity) error {
	for _, a := range added {
		if a.UserID != userID {
			return fmt.Errorf("%w: %q appended for %q", activity.ErrForeignActivity, a.UserID, userID)
		}
	}
	return nil
}

// Driver names accepted in configuration.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)
