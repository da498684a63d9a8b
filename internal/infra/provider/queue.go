package provider

import (
	"context"
	"sync"
	"time"
)

// Queue serializes outbound provider calls and enforces a minimum spacing
// between consecutive dispatches. The provider rate-limits per second, so
// concurrent callers are deliberately degraded to sequential access: latency
// is traded for staying under the limit.
type Queue struct {
	spacing time.Duration
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	tail chan struct{}
	last time.Time
}

// NewQueue builds a queue with the given inter-dispatch spacing.
func NewQueue(spacing time.Duration) *Queue {
	return &Queue{
		spacing: spacing,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Enqueue runs fn after every previously enqueued call has finished and the
// spacing since the last dispatch has elapsed. Callers waiting for their
// turn abort when their context is cancelled; fn itself, once started, runs
// to completion.
func (q *Queue) Enqueue(ctx context.Context, fn func() error) error {
	done := make(chan struct{})
	q.mu.Lock()
	prev := q.tail
	q.tail = done
	q.mu.Unlock()
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	q.mu.Lock()
	wait := q.spacing - q.now().Sub(q.last)
	q.mu.Unlock()
	if wait > 0 {
		if err := q.sleep(ctx, wait); err != nil {
			return err
		}
	}

	q.mu.Lock()
	q.last = q.now()
	q.mu.Unlock()
	return fn()
}
