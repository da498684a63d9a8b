package cache

import (
	"context"
	"sync"
	"time"
)

// Clock is injected so tests can control expiry deterministically.
type Clock func() time.Time

// Freshness describes what Get found for a key.
type Freshness int

const (
	Miss Freshness = iota
	Stale
	Fresh
)

// TTL is a mutex-guarded time-boxed cache. Expired entries are kept until
// swept or overwritten: callers that prefer stale data over a hard upstream
// failure read them through the Stale result. Writes are last-write-wins,
// which is safe because cached provider data is advisory, not authoritative.
type TTL[K comparable, V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   Clock
	items map[K]entry[V]
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

func NewTTL[K comparable, V any](ttl time.Duration, now Clock) *TTL[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{
		ttl:   ttl,
		now:   now,
		items: make(map[K]entry[V]),
	}
}

// Get returns the cached value together with its freshness. A Stale result
// still carries the value so the caller can fall back to it explicitly.
func (c *TTL[K, V]) Get(key K) (V, Freshness) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, Miss
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		return e.value, Stale
	}
	return e.value, Fresh
}

func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, storedAt: c.now()}
}

func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Expired entries back the stale-fallback reads, so the sweeper must not
// reclaim them the moment the TTL lapses. An entry is only abandoned once it
// has sat unrefreshed for this many TTLs.
const sweepGraceFactor = 12

// Sweep drops entries expired long past their TTL and reports how many were
// removed. Entries inside the grace window stay readable as Stale. Meant to
// run periodically so abandoned keys do not accumulate.
func (c *TTL[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	horizon := c.ttl * sweepGraceFactor
	removed := 0
	for key, e := range c.items {
		if now.Sub(e.storedAt) > horizon {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Sweeper periodically sweeps a set of caches.
type Sweeper struct {
	Interval time.Duration
	Targets  []interface{ Sweep() int }
}

// Run blocks until ctx is done, sweeping all targets on every tick.
func (s Sweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, t := range s.Targets {
				t.Sweep()
			}
		}
	}
}
