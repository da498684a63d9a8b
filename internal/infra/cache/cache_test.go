package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestGetFreshness(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](5*time.Minute, clock.Now)

	_, freshness := c.Get("missing")
	assert.Equal(t, Miss, freshness)

	c.Set("k", 42)
	v, freshness := c.Get("k")
	assert.Equal(t, Fresh, freshness)
	assert.Equal(t, 42, v)

	clock.Advance(5*time.Minute + time.Second)
	v, freshness = c.Get("k")
	assert.Equal(t, Stale, freshness, "expired entries stay readable for fallback")
	assert.Equal(t, 42, v)
}

func TestSetOverwriteResetsTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](time.Minute, clock.Now)

	c.Set("k", 1)
	clock.Advance(2 * time.Minute)
	c.Set("k", 2)

	v, freshness := c.Get("k")
	assert.Equal(t, Fresh, freshness)
	assert.Equal(t, 2, v)
}

func TestSweepKeepsStaleEntriesForFallback(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](time.Minute, clock.Now)

	c.Set("abandoned", 1)
	clock.Advance(13 * time.Minute)
	c.Set("stale", 2)
	clock.Advance(2 * time.Minute)
	c.Set("fresh", 3)

	assert.Equal(t, 1, c.Sweep(), "only the entry past the grace window goes")
	assert.Equal(t, 2, c.Len())

	_, freshness := c.Get("abandoned")
	assert.Equal(t, Miss, freshness)
	v, freshness := c.Get("stale")
	assert.Equal(t, Stale, freshness, "expired entries survive sweeps for fallback reads")
	assert.Equal(t, 2, v)
	_, freshness = c.Get("fresh")
	assert.Equal(t, Fresh, freshness)
}
