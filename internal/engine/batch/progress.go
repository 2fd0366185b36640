package batch

import (
	"sync"
	"time"
)

// Progress counts processed items and chunks. It is safe for concurrent use.
type Progress struct {
	mu          sync.RWMutex
	totalItems  int
	totalChunks int
	items       int
	chunks      int
	start       time.Time
}

// Snapshot is a point-in-time copy of a Progress.
type Snapshot struct {
	TotalItems      int
	ProcessedItems  int
	TotalChunks     int
	ProcessedChunks int
	Elapsed         time.Duration
}

// NewProgress starts tracking totalItems split into totalChunks.
func NewProgress(totalItems, totalChunks int) *Progress {
	return &Progress{totalItems: totalItems, totalChunks: totalChunks, start: time.Now()}
}

// Add records one finished chunk of n items.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items += n
	p.chunks++
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		TotalItems:      p.totalItems,
		ProcessedItems:  p.items,
		TotalChunks:     p.totalChunks,
		ProcessedChunks: p.chunks,
		Elapsed:         time.Since(p.start),
	}
}

// Percent returns completion in the range 0 to 100.
func (s Snapshot) Percent() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return float64(s.ProcessedItems) / float64(s.TotalItems) * 100
}

// Done reports whether every item has been processed.
func (s Snapshot) Done() bool {
	return s.ProcessedItems >= s.TotalItems
}
