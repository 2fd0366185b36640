package activity

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDSource hands out activity identifiers.
// Successive IDs from one source must be strictly increasing.
type IDSource interface {
	NextID() (ID, error)
}

// Observer is implemented by sources that can be told about an ID minted
// elsewhere, such as by another process sharing the store. Every ID the
// source returns afterwards sorts after the observed one.
type Observer interface {
	Observe(id ID)
}

// ULIDSource generates monotonic ULIDs.
// IDs minted within the same millisecond still increase, and a clock that
// steps backwards reuses the last seen millisecond instead of going back.
type ULIDSource struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
	last    ulid.ULID
}

// NewULIDSource returns a ULIDSource reading entropy from crypto/rand.
func NewULIDSource() *ULIDSource {
	return NewULIDSourceWith(time.Now, rand.Reader)
}

// NewULIDSourceWith returns a ULIDSource with an explicit clock and entropy reader.
func NewULIDSourceWith(now func() time.Time, entropy io.Reader) *ULIDSource {
	return &ULIDSource{
		now:     now,
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// NextID implements IDSource.
func (s *ULIDSource) NextID() (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := ulid.Timestamp(s.now())
	if last := s.last.Time(); ms < last {
		ms = last
	}

	id, err := ulid.New(ms, s.entropy)
	if err != nil {
		return "", fmt.Errorf("generating ulid: %w", err)
	}
	if id.Compare(s.last) <= 0 {
		if id, err = successor(s.last); err != nil {
			return "", err
		}
	}
	s.last = id
	return ID(id.String()), nil
}

// Observe implements Observer. IDs that are not ULIDs are ignored.
func (s *ULIDSource) Observe(id ID) {
	parsed, err := ulid.ParseStrict(string(id))
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if parsed.Compare(s.last) > 0 {
		s.last = parsed
	}
}

// successor returns the ULID right after id in sort order.
func successor(id ulid.ULID) (ulid.ULID, error) {
	for i := len(id) - 1; i >= 0; i-- {
		id[i]++
		if id[i] != 0 {
			return id, nil
		}
	}
	return ulid.ULID{}, fmt.Errorf("generating ulid: %w", ulid.ErrMonotonicOverflow)
}

// SequenceSource yields zero-padded decimal IDs 1, 2, 3, ...
// Tests use it for deterministic identifiers.
type SequenceSource struct {
	mu   sync.Mutex
	next uint64
}

// NewSequenceSource returns a source whose first ID is start.
func NewSequenceSource(start uint64) *SequenceSource {
	return &SequenceSource{next: start}
}

// NextID implements IDSource.
func (s *SequenceSource) NextID() (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ID(fmt.Sprintf("%020d", s.next))
	s.next++
	return id, nil
}

// Observe implements Observer. IDs that are not decimal are ignored.
func (s *SequenceSource) Observe(id ID) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= s.next {
		s.next = n + 1
	}
}
