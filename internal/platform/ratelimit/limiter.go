// Package ratelimit implements a sliding-window request limiter on Redis
// sorted sets. Each key holds one member per admitted request scored by its
// arrival time in milliseconds; the check, trim and insert run atomically in
// a Lua script.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces limiter keys.
const DefaultPrefix = "taskflow:ratelimit:"

var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)
	local expire_seconds = math.ceil(window_ms / 1000)

	if current < limit then
		local counter = redis.call('INCR', key .. ':seq')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('EXPIRE', key, expire_seconds)
		redis.call('EXPIRE', key .. ':seq', expire_seconds)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset_at = 0
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, reset_at}
`)

// Result describes the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long the caller should wait before retrying, rounded up
// to whole seconds and never less than one.
func (r Result) RetryAfter(now time.Time) time.Duration {
	wait := r.ResetAt.Sub(now)
	if wait < time.Second {
		return time.Second
	}
	return wait.Round(time.Second)
}

// Limiter admits at most Limit requests per key within Window.
type Limiter struct {
	client  redis.Scripter
	prefix  string
	limit   int
	window  time.Duration
	timeNow func() time.Time
}

// NewLimiter creates a limiter allowing limit requests per window.
func NewLimiter(client redis.Scripter, limit int, window time.Duration) *Limiter {
	if client == nil {
		panic("redis client cannot be nil") // ALLOW-PANIC
	}
	return &Limiter{
		client:  client,
		prefix:  DefaultPrefix,
		limit:   limit,
		window:  window,
		timeNow: time.Now,
	}
}

// WithTimeFunc returns a copy of the limiter that reads the clock from fn.
func (l *Limiter) WithTimeFunc(fn func() time.Time) *Limiter {
	c := *l
	c.timeNow = fn
	return &c
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.timeNow()
	nowMs := now.UnixMilli()
	windowMs := l.window.Milliseconds()

	values, err := slidingWindow.Run(ctx, l.client, []string{l.prefix + key},
		nowMs, nowMs-windowMs, l.limit, windowMs).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(values) != 3 {
		return Result{}, fmt.Errorf("unexpected rate limit reply length: %d", len(values))
	}

	result := Result{
		Allowed:   values[0] == 1,
		Limit:     l.limit,
		Remaining: int(values[1]),
		ResetAt:   now.Add(l.window),
	}
	if values[2] > 0 {
		result.ResetAt = time.UnixMilli(values[2])
	}
	return result, nil
}
