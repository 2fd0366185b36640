package batch

import (
	"context"
	"fmt"
)

// Chunk size limits.
const (
	DefaultSize = 100
	MinSize     = 1
	MaxSize     = 1000
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Processing errors.
var (
	ErrInvalidSize = constError("batch size must be between 1 and 1000")
	ErrNilCallback = constError("batch callback cannot be nil")
)

// Callback handles one chunk. index is the 0-based chunk number and offset
// the position of the chunk's first item in the full input.
type Callback[T any] func(ctx context.Context, chunk []T, index, offset int) error

// ProgressFunc receives a snapshot after each completed chunk.
type ProgressFunc func(Snapshot)

// Processor walks a slice chunk by chunk.
type Processor[T any] struct {
	size       int
	onProgress ProgressFunc
}

// NewProcessor returns a processor with the given chunk size.
func NewProcessor[T any](size int) (*Processor[T], error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return &Processor[T]{size: size}, nil
}

// NewDefaultProcessor returns a processor using DefaultSize.
func NewDefaultProcessor[T any]() *Processor[T] {
	return &Processor[T]{size: DefaultSize}
}

// WithProgress sets the progress callback.
func (p *Processor[T]) WithProgress(fn ProgressFunc) *Processor[T] {
	p.onProgress = fn
	return p
}

// Size returns the chunk size.
func (p *Processor[T]) Size() int {
	return p.size
}

// Process runs fn over items in order and stops at the first error.
// An empty input is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn Callback[T]) error {
	if fn == nil {
		return ErrNilCallback
	}
	if len(items) == 0 {
		return nil
	}

	bounds := p.Chunks(len(items))
	progress := NewProgress(len(items), len(bounds))

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, items[b[0]:b[1]], i, b[0]); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}

		progress.Add(b[1] - b[0])
		if p.onProgress != nil {
			p.onProgress(progress.Snapshot())
		}
	}
	return nil
}

// Chunks returns the [start, end) bounds of each chunk for total items.
func (p *Processor[T]) Chunks(total int) [][2]int {
	n := total / p.size
	if total%p.size > 0 {
		n++
	}
	out := make([][2]int, n)
	for i := range n {
		start := i * p.size
		out[i] = [2]int{start, min(start+p.size, total)}
	}
	return out
}
