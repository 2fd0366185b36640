// Package memory provides a process-local activity store.
package memory

import (
	"context"
	"sync"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/store"
)

// Store keeps activities in memory, per user, in append order.
type Store struct {
	mu    sync.RWMutex
	users map[string][]activity.Activity
}

// New returns an empty Store.
func New() *Store {
	return &Store{users: make(map[string][]activity.Activity)}
}

// AppendNext implements store.Store. One lock covers every user.
func (s *Store) AppendNext(ctx context.Context, userID string, next store.AppendFunc) ([]activity.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := next(copyAll(s.users[userID]))
	if err != nil {
		return nil, err
	}
	if err := store.CheckOwner(userID, added); err != nil {
		return nil, err
	}
	for _, a := range added {
		s.users[userID] = append(s.users[userID], copyActivity(a))
	}
	return added, nil
}

// QueryByUser implements store.Store.
func (s *Store) QueryByUser(ctx context.Context, userID string) ([]activity.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAll(s.users[userID]), nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func copyAll(records []activity.Activity) []activity.Activity {
	out := make([]activity.Activity, len(records))
	for i, a := range records {
		out[i] = copyActivity(a)
	}
	return out
}

func copyActivity(a activity.Activity) activity.Activity {
	if a.Components != nil {
		c := make(map[string]float64, len(a.Components))
		for k, v := range a.Components {
			c[k] = v
		}
		a.Components = c
	}
	return a
}
