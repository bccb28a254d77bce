package ratelimiter_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catb00mer/fluffer/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryStoreConsumeTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	config := ratelimiter.Config{
		Capacity:       10,
		RefillRate:     2,
		RefillInterval: time.Second,
	}

	t.Run("new bucket starts full", func(t *testing.T) {
		store := ratelimiter.NewMemoryStore()

		remaining, resetAt, err := store.ConsumeTokens(ctx, "new", 3, config)
		require.NoError(t, err)
		assert.Equal(t, 7, remaining)
		assert.NotZero(t, resetAt)
	})

	t.Run("consumes until negative", func(t *testing.T) {
		store := ratelimiter.NewMemoryStore()

		remaining, _, _ := store.ConsumeTokens(ctx, "k", 4, config)
		assert.Equal(t, 6, remaining)
		remaining, _, _ = store.ConsumeTokens(ctx, "k", 3, config)
		assert.Equal(t, 3, remaining)
		remaining, _, _ = store.ConsumeTokens(ctx, "k", 5, config)
		assert.Equal(t, -2, remaining)
	})

	t.Run("refills per whole interval and caps at capacity", func(t *testing.T) {
		clk := newClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now))

		remaining, _, _ := store.ConsumeTokens(ctx, "k", 10, config)
		assert.Equal(t, 0, remaining)

		clk.Advance(1500 * time.Millisecond)
		remaining, resetAt, _ := store.ConsumeTokens(ctx, "k", 0, config)
		assert.Equal(t, 2, remaining)
		assert.Equal(t, clk.Now().Add(time.Second), resetAt)

		clk.Advance(time.Hour)
		remaining, _, _ = store.ConsumeTokens(ctx, "k", 0, config)
		assert.Equal(t, 10, remaining)
	})

	t.Run("keys are independent and reset refills", func(t *testing.T) {
		store := ratelimiter.NewMemoryStore()

		_, _, _ = store.ConsumeTokens(ctx, "a", 10, config)
		remaining, _, _ := store.ConsumeTokens(ctx, "b", 1, config)
		assert.Equal(t, 9, remaining)

		require.NoError(t, store.Reset(ctx, "a"))
		remaining, _, _ = store.ConsumeTokens(ctx, "a", 1, config)
		assert.Equal(t, 9, remaining)
	})
}

func TestMemoryStoreCleanup(t *testing.T) {
	t.Parallel()

	clk := newClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now), ratelimiter.WithStaleAfter(time.Minute))
	config := ratelimiter.PerMinute(60)

	_, _, _ = store.ConsumeTokens(context.Background(), "old", 1, config)
	clk.Advance(2 * time.Minute)
	_, _, _ = store.ConsumeTokens(context.Background(), "fresh", 1, config)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreRunStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ratelimiter.NewMemoryStore().Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  ratelimiter.Config
		wantErr bool
	}{
		{name: "valid", config: ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}},
		{name: "per minute", config: ratelimiter.PerMinute(30)},
		{name: "zero capacity", config: ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}, wantErr: true},
		{name: "zero rate", config: ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}, wantErr: true},
		{name: "zero interval", config: ratelimiter.Config{Capacity: 1, RefillRate: 1}, wantErr: true},
		{name: "per minute zero", config: ratelimiter.PerMinute(0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPerMinute(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ratelimiter.Config{Capacity: 30, RefillRate: 1, RefillInterval: 2 * time.Second}, ratelimiter.PerMinute(30))
}

func TestBucket(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now))

	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: 10 * time.Second})
	require.NoError(t, err)

	for range 2 {
		res, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Zero(t, res.RetryAfter())
		assert.Equal(t, 2, res.Limit)
	}

	res, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, clk.Now().Add(10*time.Second), res.ResetAt)

	status, err := limiter.Status(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, -1, status.Remaining)

	require.NoError(t, limiter.Reset(ctx, "client"))
	res, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	_, err = limiter.AllowN(ctx, "client", 3)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	_, err = limiter.AllowN(ctx, "client", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

type brokenStore struct{}

func (brokenStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("connection refused")
}

func (brokenStore) Reset(context.Context, string) error {
	return errors.New("connection refused")
}

func TestBucketErrors(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.NewBucket(nil, ratelimiter.PerMinute(1))
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	_, err = ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	limiter, err := ratelimiter.NewBucket(brokenStore{}, ratelimiter.PerMinute(1))
	require.NoError(t, err)

	_, err = limiter.Allow(context.Background(), "k")
	assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
	assert.ErrorIs(t, limiter.Reset(context.Background(), "k"), ratelimiter.ErrStoreUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = limiter.Allow(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBucketConcurrent(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       100,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				if res, err := limiter.Allow(context.Background(), "shared"); err == nil && res.Allowed() {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowed.Load())
}
