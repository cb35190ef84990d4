// Package accel provides helpers for processing large collections in batches.
package accel

import "context"

// DefaultSize is used when a non-positive batch size is requested.
const DefaultSize = 100

// Batch splits work into fixed-size chunks
type Batch struct {
	size int
}

// NewBatch creates a new batch processor with the given size
func NewBatch(size int) *Batch {
	if size <= 0 {
		size = DefaultSize
	}
	return &Batch{size: size}
}

// Size returns the batch size
func (b *Batch) Size() int {
	return b.size
}

// Count returns how many batches n items split into
func (b *Batch) Count(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + b.size - 1) / b.size
}

// Each calls fn with consecutive chunks of at most b.Size() items, in order.
// It stops at the first error or once ctx is done.
func Each[T any](ctx context.Context, b *Batch, items []T, fn func(ctx context.Context, chunk []T) error) error {
	for start := 0; start < len(items); start += b.size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+b.size, len(items))
		if err := fn(ctx, items[start:end:end]); err != nil {
			return err
		}
	}
	return nil
}
