package activity

import (
	"fmt"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrDuplicateIdentifier indicates an ID that does not sort after the last appended ID.
	// It signals a broken IDSource and never occurs with a monotonic source.
	ErrDuplicateIdentifier = constError("duplicate identifier")

	// ErrForeignActivity indicates an activity owned by a different user than the log.
	ErrForeignActivity = constError("activity belongs to another user")
)

// Log is the append-ordered activity history of one user.
//
// A Log is not safe for concurrent mutation; callers serialize appends per user.
type Log struct {
	userID     string
	ids        IDSource
	activities []Activity
}

// NewLog returns an empty log for userID drawing identifiers from ids.
func NewLog(userID string, ids IDSource) *Log {
	return &Log{userID: userID, ids: ids}
}

// Restore rebuilds a log from persisted activities given in append order.
// It fails with ErrDuplicateIdentifier if the IDs are not strictly increasing.
// When ids is an Observer it is told the last persisted ID, so IDs minted
// by other writers never collide with the next Append.
func Restore(userID string, ids IDSource, activities []Activity) (*Log, error) {
	l := NewLog(userID, ids)
	for i, a := range activities {
		if err := l.admit(a); err != nil {
			return nil, fmt.Errorf("restoring activity %d: %w", i, err)
		}
		l.activities = append(l.activities, a.clone())
	}
	if o, ok := ids.(Observer); ok && len(l.activities) > 0 {
		o.Observe(l.activities[len(l.activities)-1].ID)
	}
	return l, nil
}

// UserID returns the owner of the log.
func (l *Log) UserID() string {
	return l.userID
}

// Append assigns the next identifier to a and appends it.
// The log is left unchanged on error.
func (l *Log) Append(a Activity) (Activity, error) {
	if a.UserID == "" {
		a.UserID = l.userID
	}

	id, err := l.ids.NextID()
	if err != nil {
		return Activity{}, fmt.Errorf("assigning activity id: %w", err)
	}
	a.ID = id

	if err := l.admit(a); err != nil {
		return Activity{}, err
	}

	a = a.clone()
	l.activities = append(l.activities, a)
	return a.clone(), nil
}

// admit checks ownership and ID ordering without mutating the log.
func (l *Log) admit(a Activity) error {
	if a.UserID != l.userID {
		return fmt.Errorf("%w: %q in log of %q", ErrForeignActivity, a.UserID, l.userID)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: empty id", ErrDuplicateIdentifier)
	}
	if n := len(l.activities); n > 0 && a.ID <= l.activities[n-1].ID {
		return fmt.Errorf("%w: %s is not after %s", ErrDuplicateIdentifier, a.ID, l.activities[n-1].ID)
	}
	return nil
}

// Len returns the number of activities.
func (l *Log) Len() int {
	return len(l.activities)
}

// All returns every activity, most recently appended first.
func (l *Log) All() []Activity {
	out := make([]Activity, 0, len(l.activities))
	for i := len(l.activities) - 1; i >= 0; i-- {
		out = append(out, l.activities[i].clone())
	}
	return out
}

// Chronological returns every activity in append order.
func (l *Log) Chronological() []Activity {
	out := make([]Activity, len(l.activities))
	for i, a := range l.activities {
		out[i] = a.clone()
	}
	return out
}

// FilterByDate returns the activities dated d, most recently appended first.
func (l *Log) FilterByDate(d Date) []Activity {
	var out []Activity
	for i := len(l.activities) - 1; i >= 0; i-- {
		if l.activities[i].Date == d {
			out = append(out, l.activities[i].clone())
		}
	}
	return out
}

// Dates returns the set of dates that have at least one activity.
func (l *Log) Dates() map[Date]struct{} {
	out := make(map[Date]struct{})
	for _, a := range l.activities {
		out[a.Date] = struct{}{}
	}
	return out
}
