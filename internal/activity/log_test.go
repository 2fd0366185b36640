package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecotrack/internal/emission"
)

// fixedSource returns the same ID forever, which a log must reject on the second append.
type fixedSource struct{ id ID }

func (f fixedSource) NextID() (ID, error) { return f.id, nil }

type failingSource struct{}

func (failingSource) NextID() (ID, error) { return "", errors.New("entropy exhausted") }

func newActivity(date Date, category emission.Category, subtype string, kg float64) Activity {
	return Activity{
		Date:     date,
		Category: category,
		Subtype:  subtype,
		Quantity: 1,
		Emission: kg,
	}
}

func TestLogAppendAssignsIncreasingIDs(t *testing.T) {
	log := NewLog("alice", NewSequenceSource(1))
	day := NewDate(2026, time.October, 19)

	first, err := log.Append(newActivity(day, emission.CategoryFood, "nasi", 4))
	require.NoError(t, err)
	second, err := log.Append(newActivity(day, emission.CategoryTransport, "motor", 1.5))
	require.NoError(t, err)

	assert.Equal(t, ID("00000000000000000001"), first.ID)
	assert.Equal(t, ID("00000000000000000002"), second.ID)
	assert.Less(t, string(first.ID), string(second.ID))
	assert.Equal(t, "alice", first.UserID)
	assert.Equal(t, 2, log.Len())
}

func TestLogViews(t *testing.T) {
	log := NewLog("alice", NewSequenceSource(1))
	d1 := NewDate(2026, time.October, 18)
	d2 := NewDate(2026, time.October, 19)

	_, err := log.Append(newActivity(d1, emission.CategoryFood, "nasi", 4))
	require.NoError(t, err)
	_, err = log.Append(newActivity(d2, emission.CategoryFood, "ikan", 5.1))
	require.NoError(t, err)
	_, err = log.Append(newActivity(d2, emission.CategoryTransport, "motor", 1.5))
	require.NoError(t, err)

	all := log.All()
	require.Len(t, all, 3)
	assert.Equal(t, "motor", all[0].Subtype, "newest first")
	assert.Equal(t, "nasi", all[2].Subtype)

	chrono := log.Chronological()
	assert.Equal(t, "nasi", chrono[0].Subtype)
	assert.Equal(t, "motor", chrono[2].Subtype)

	today := log.FilterByDate(d2)
	require.Len(t, today, 2)
	assert.Equal(t, "motor", today[0].Subtype)
	assert.Equal(t, "ikan", today[1].Subtype)
	assert.Empty(t, log.FilterByDate(NewDate(2026, time.October, 1)))

	assert.Equal(t, map[Date]struct{}{d1: {}, d2: {}}, log.Dates())
}

func TestLogRejectsDuplicateIdentifier(t *testing.T) {
	log := NewLog("alice", fixedSource{id: "0001"})
	day := NewDate(2026, time.October, 19)

	_, err := log.Append(newActivity(day, emission.CategoryFood, "nasi", 4))
	require.NoError(t, err)

	_, err = log.Append(newActivity(day, emission.CategoryFood, "nasi", 4))
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Equal(t, 1, log.Len(), "failed append must not modify the log")
}

func TestLogAppendFailures(t *testing.T) {
	day := NewDate(2026, time.October, 19)

	log := NewLog("alice", failingSource{})
	_, err := log.Append(newActivity(day, emission.CategoryFood, "nasi", 4))
	require.Error(t, err)
	assert.Equal(t, 0, log.Len())

	log = NewLog("alice", NewSequenceSource(1))
	foreign := newActivity(day, emission.CategoryFood, "nasi", 4)
	foreign.UserID = "bob"
	_, err = log.Append(foreign)
	require.ErrorIs(t, err, ErrForeignActivity)
	assert.Equal(t, 0, log.Len())
}

func TestLogReturnsCopies(t *testing.T) {
	log := NewLog("alice", NewSequenceSource(1))
	day := NewDate(2026, time.October, 19)

	a := newActivity(day, emission.CategoryEnergy, "daily", 2.1)
	a.Components = map[string]float64{"ac": 2, "tv": 3}
	_, err := log.Append(a)
	require.NoError(t, err)

	a.Components["ac"] = 100
	got := log.All()
	got[0].Components["tv"] = 100

	again := log.All()
	assert.Equal(t, map[string]float64{"ac": 2, "tv": 3}, again[0].Components)
}

func TestRestore(t *testing.T) {
	day := NewDate(2026, time.October, 19)
	persisted := []Activity{
		{ID: "00000000000000000001", UserID: "alice", Date: day, Category: emission.CategoryFood, Subtype: "nasi", Emission: 4},
		{ID: "00000000000000000002", UserID: "alice", Date: day, Category: emission.CategoryFood, Subtype: "ikan", Emission: 5.1},
	}

	log, err := Restore("alice", NewSequenceSource(3), persisted)
	require.NoError(t, err)
	assert.Equal(t, 2, log.Len())

	next, err := log.Append(newActivity(day, emission.CategoryTransport, "motor", 1.5))
	require.NoError(t, err)
	assert.Equal(t, ID("00000000000000000003"), next.ID)

	_, err = Restore("alice", NewSequenceSource(1), []Activity{persisted[1], persisted[0]})
	require.ErrorIs(t, err, ErrDuplicateIdentifier)

	_, err = Restore("bob", NewSequenceSource(1), persisted)
	require.ErrorIs(t, err, ErrForeignActivity)
}

func TestULIDSourceIsMonotonic(t *testing.T) {
	frozen := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	src := NewULIDSourceWith(func() time.Time { return frozen }, bytes.NewReader(bytes.Repeat([]byte{7}, 4096)))

	var prev ID
	for range 100 {
		id, err := src.NextID()
		require.NoError(t, err)
		require.Len(t, string(id), 26)
		assert.Greater(t, string(id), string(prev))
		prev = id
	}
}

func TestULIDSourceClockStepsBack(t *testing.T) {
	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	src := NewULIDSourceWith(clock, bytes.NewReader(bytes.Repeat([]byte{1}, 4096)))

	first, err := src.NextID()
	require.NoError(t, err)

	now = now.Add(-time.Hour)
	second, err := src.NextID()
	require.NoError(t, err)
	assert.Greater(t, string(second), string(first))
}

func TestULIDSourceConcurrentUse(t *testing.T) {
	src := NewULIDSource()
	const n = 200

	var (
		mu   sync.Mutex
		seen = make(map[ID]struct{}, n)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := src.NextID()
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.October, 19), d)
	assert.Equal(t, "2026-10-19", d.String())

	assert.Equal(t, NewDate(2026, time.November, 1), NewDate(2026, time.October, 31).AddDays(1))
	assert.Equal(t, NewDate(2026, time.February, 28), NewDate(2026, time.March, 1).AddDays(-1))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 6, d.AddDays(-6).DaysUntil(d))
	assert.True(t, Date{}.IsZero())

	local := time.Date(2026, time.October, 19, 23, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, d, DateOf(local), "caller's local date, not UTC")

	_, err = ParseDate("19/10/2026")
	require.Error(t, err)
}

func TestActivityJSON(t *testing.T) {
	a := Activity{
		ID:         "01",
		UserID:     "alice",
		Date:       NewDate(2026, time.October, 19),
		Category:   emission.CategoryEnergy,
		Subtype:    emission.CompositeSubtype,
		Quantity:   5,
		Emission:   2.1,
		Components: map[string]float64{"ac": 2, "tv": 3},
		RecordedAt: time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2026-10-19"`)
	assert.Contains(t, string(data), `"emission_kg":2.1`)

	var back Activity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestFromEmission(t *testing.T) {
	e := emission.Emission{
		Category:   emission.CategoryEnergy,
		Subtype:    emission.CompositeSubtype,
		Quantity:   5,
		Kg:         2.1,
		Components: map[string]float64{"ac": 2, "tv": 3},
	}
	at := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

	a := FromEmission("alice", DateOf(at), e, at)
	assert.Empty(t, a.ID)
	assert.InDelta(t, 2.1, a.Emission, 1e-12)
	assert.Equal(t, e.Components, a.Components)

	e.Components["ac"] = 9
	assert.InDelta(t, 2.0, a.Components["ac"], 1e-12)
}

func TestULIDSourceObservesForeignIDs(t *testing.T) {
	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		ahead time.Duration
	}{
		{name: "other writer's clock is ahead", ahead: time.Second},
		{name: "same millisecond", ahead: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := NewULIDSourceWith(func() time.Time { return now.Add(tt.ahead) },
				bytes.NewReader(bytes.Repeat([]byte{0xff}, 4096)))
			foreign, err := other.NextID()
			require.NoError(t, err)

			src := NewULIDSourceWith(func() time.Time { return now },
				bytes.NewReader(bytes.Repeat([]byte{0}, 4096)))
			src.Observe(foreign)

			next, err := src.NextID()
			require.NoError(t, err)
			assert.Greater(t, string(next), string(foreign))
		})
	}
}

func TestULIDSourceIgnoresOlderAndInvalidIDs(t *testing.T) {
	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	src := NewULIDSourceWith(func() time.Time { return now }, bytes.NewReader(bytes.Repeat([]byte{3}, 4096)))

	first, err := src.NextID()
	require.NoError(t, err)

	src.Observe("00000000000000000001")
	src.Observe("not-a-ulid")
	src.Observe("00000000000000000000000000")

	second, err := src.NextID()
	require.NoError(t, err)
	assert.Greater(t, string(second), string(first))
	assert.Equal(t, string(first)[:10], string(second)[:10], "timestamp unchanged")
}

func TestSequenceSourceObserve(t *testing.T) {
	src := NewSequenceSource(1)
	src.Observe("00000000000000000007")
	src.Observe("00000000000000000003")
	src.Observe("01M59JSC00")

	id, err := src.NextID()
	require.NoError(t, err)
	assert.Equal(t, ID("00000000000000000008"), id)
}

func TestRestoreSeedsIDSource(t *testing.T) {
	day := NewDate(2026, time.October, 19)
	persisted := []Activity{
		{ID: "00000000000000000041", UserID: "alice", Date: day, Category: emission.CategoryFood, Subtype: "nasi", Emission: 4},
		{ID: "00000000000000000042", UserID: "alice", Date: day, Category: emission.CategoryFood, Subtype: "ikan", Emission: 5.1},
	}

	// A source that lags behind another writer catches up on restore.
	log, err := Restore("alice", NewSequenceSource(1), persisted)
	require.NoError(t, err)

	next, err := log.Append(newActivity(day, emission.CategoryTransport, "motor", 1.5))
	require.NoError(t, err)
	assert.Equal(t, ID("00000000000000000043"), next.ID)
}
