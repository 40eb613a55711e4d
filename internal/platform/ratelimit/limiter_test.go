package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration, clock *time.Time) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewLimiter(client, limit, window).WithTimeFunc(func() time.Time { return *clock })
	return l, srv
}

func TestLimiterAllow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l, _ := newTestLimiter(t, 3, time.Minute, &now)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "login:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
		assert.Equal(t, 3, res.Limit)
		now = now.Add(time.Second)
	}

	denied, err := l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Zero(t, denied.Remaining)
	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, first.Add(time.Minute).Equal(denied.ResetAt), "reset when the oldest request leaves the window")
	assert.Equal(t, 57*time.Second, denied.RetryAfter(now))

	other, err := l.Allow(ctx, "login:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are limited independently")
}

func TestLimiterSlidingWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l, _ := newTestLimiter(t, 2, 10*time.Second, &now)

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	now = now.Add(11 * time.Second)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "old requests slide out of the window")
	assert.Equal(t, 1, res.Remaining)
}

func TestLimiterRedisDown(t *testing.T) {
	t.Parallel()
	now := time.Now()
	l, srv := newTestLimiter(t, 1, time.Minute, &now)
	srv.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestResultRetryAfter(t *testing.T) {
	t.Parallel()
	now := time.Now()

	assert.Equal(t, time.Second, Result{ResetAt: now}.RetryAfter(now))
	assert.Equal(t, time.Second, Result{ResetAt: now.Add(-time.Minute)}.RetryAfter(now))
	assert.Equal(t, 30*time.Second, Result{ResetAt: now.Add(29600 * time.Millisecond)}.RetryAfter(now))
}
