package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
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

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewMemoryLimiter(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d should be allowed", i)
		assert.Equal(t, i, d.Count)
		assert.Equal(t, 5-i, d.Remaining())
	}

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 5, d.Count, "denied calls must not increment the count")
	assert.Equal(t, 0, d.Remaining())
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
}

func TestMemoryLimiter_DeniedCallsDoNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewMemoryLimiter(1, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	first, _ := l.Allow(ctx, "k")
	clock.Advance(30 * time.Second)
	denied, _ := l.Allow(ctx, "k")

	assert.False(t, denied.Allowed)
	assert.Equal(t, first.ResetAt, denied.ResetAt)
}

func TestMemoryLimiter_ResetsAtWindowBoundary(t *testing.T) {
	clock := newFakeClock()
	l := NewMemoryLimiter(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = l.Allow(ctx, "k")
	}

	clock.Advance(59 * time.Second)
	d, _ := l.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	clock.Advance(time.Second)
	d, _ = l.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	a, _ := l.Allow(ctx, "a")
	b, _ := l.Allow(ctx, "b")
	a2, _ := l.Allow(ctx, "a")

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestMemoryLimiter_InstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	first := NewMemoryLimiter(1, time.Minute)
	second := NewMemoryLimiter(1, time.Minute)

	_, _ = first.Allow(ctx, "k")
	d, _ := second.Allow(ctx, "k")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_ConcurrentCallsNeverOverAdmit(t *testing.T) {
	l := NewMemoryLimiter(5, time.Minute)
	ctx := context.Background()

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "shared")
			if err == nil && d.Allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), admitted)
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := Decision{ResetAt: now.Add(42*time.Second + 100*time.Millisecond)}
	assert.Equal(t, 43, d.RetryAfter(now))
	assert.Equal(t, 1, d.RetryAfter(now.Add(time.Hour)))
}
