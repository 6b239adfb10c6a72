package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter returns a limiter driven by a manual clock.
func newTestLimiter(t *testing.T, rate float64, burst int) (*MemoryLimiter, *time.Time) {
	t.Helper()
	m := NewMemoryLimiter(rate, burst)
	t.Cleanup(func() { require.NoError(t, m.Close()) })
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestMemoryLimiterBurstThenDeny(t *testing.T) {
	m, _ := newTestLimiter(t, 10, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d is within burst", i)
	}
	ok, err := m.Allow(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "burst exhausted")
}

func TestMemoryLimiterTokenRefill(t *testing.T) {
	m, clock := newTestLimiter(t, 2, 1) // one token every 500ms
	ctx := context.Background()

	ok, _ := m.Allow(ctx, "k1")
	require.True(t, ok)
	ok, _ = m.Allow(ctx, "k1")
	require.False(t, ok)

	*clock = clock.Add(250 * time.Millisecond)
	ok, _ = m.Allow(ctx, "k1")
	assert.False(t, ok, "half a token is not enough")

	*clock = clock.Add(300 * time.Millisecond)
	ok, _ = m.Allow(ctx, "k1")
	assert.True(t, ok)
}

func TestMemoryLimiterRefillCappedAtBurst(t *testing.T) {
	m, clock := newTestLimiter(t, 100, 2)
	ctx := context.Background()

	_, _ = m.Allow(ctx, "k1")
	*clock = clock.Add(time.Hour)

	allowed := 0
	for i := 0; i < 5; i++ {
		if ok, _ := m.Allow(ctx, "k1"); ok {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
}

func TestMemoryLimiterIndependentKeys(t *testing.T) {
	m, _ := newTestLimiter(t, 10, 1)
	ctx := context.Background()

	ok, _ := m.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = m.Allow(ctx, "a")
	assert.False(t, ok)
	ok, _ = m.Allow(ctx, "b")
	assert.True(t, ok, "key b has its own bucket")
}

func TestMemoryLimiterConcurrent(t *testing.T) {
	m, _ := newTestLimiter(t, 100, 50)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				ok, err := m.Allow(ctx, "shared")
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	// The clock is frozen, so exactly the burst is admitted.
	assert.Equal(t, 50, allowed)
}

func TestMemoryLimiterEvictStale(t *testing.T) {
	m, clock := newTestLimiter(t, 10, 5)
	ctx := context.Background()

	_, _ = m.Allow(ctx, "stale")
	*clock = clock.Add(5 * time.Minute)
	_, _ = m.Allow(ctx, "recent")
	*clock = clock.Add(6 * time.Minute)

	m.evictStale()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.NotContains(t, m.buckets, "stale")
	assert.Contains(t, m.buckets, "recent")
}

func TestMemoryLimiterRetryAfter(t *testing.T) {
	m, _ := newTestLimiter(t, 4, 1)
	assert.Equal(t, 250*time.Millisecond, m.RetryAfter())
}

func TestNoopLimiter(t *testing.T) {
	var l Limiter = NoopLimiter{}
	ok, err := l.Allow(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Close())
}
