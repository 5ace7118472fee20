package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenBucketLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := NewTokenBucketPerWindow(clock, 3, time.Minute, 0, 0)

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("delivery-1"), "attempt %d", i+1)
	}
	require.False(t, l.Allow("delivery-1"))

	// other keys are unaffected
	require.True(t, l.Allow("delivery-2"))
}

func TestTokenBucketLimiter_RefillsOverTime(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := NewTokenBucketPerWindow(clock, 2, time.Minute, 0, 0)

	require.True(t, l.Allow("k"))
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))

	clock.Advance(30 * time.Second)
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))
}

func TestTokenBucketLimiter_MaxBuckets(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := NewTokenBucketLimiter(clock, Config{Rate: 1, Burst: 1, MaxBuckets: 1})

	require.True(t, l.Allow("a"))
	// bucket table full: unknown keys are rejected outright
	require.False(t, l.Allow("b"))
}

func TestTokenBucketLimiter_CleanupExpiredBuckets(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := NewTokenBucketLimiter(clock, Config{Rate: 1, Burst: 1, TTL: time.Minute, MaxBuckets: 1})

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("b"))

	clock.Advance(3 * time.Minute)
	// "a" is idle past TTL; its slot is reclaimed for "b"
	require.True(t, l.Allow("b"))
}

func TestTokenBucketLimiter_DefaultsApplied(t *testing.T) {
	t.Parallel()

	l := NewTokenBucketLimiter(nil, Config{Rate: -1, Burst: -1, MaxBuckets: -5})
	require.True(t, l.Allow("k"))
}

func TestNopLimiter_AlwaysAllows(t *testing.T) {
	t.Parallel()

	l := NewNopLimiter()
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("k"))
	}
}
