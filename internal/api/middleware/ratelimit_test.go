package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/platform/ratelimit"
)

type limiterFunc func(ctx context.Context, key string) (ratelimit.Result, error)

func (f limiterFunc) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	return f(ctx, key)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitWithRedis(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := RateLimit(ratelimit.NewLimiter(client, 2, time.Minute))(okHandler())

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("10.0.0.1:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001").Code, "port is not part of the key")

	blocked := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Too many requests"}`, blocked.Body.String())

	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code, "other clients keep their own budget")
}

func TestRateLimitRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := limiterFunc(func(context.Context, string) (ratelimit.Result, error) {
		return ratelimit.Result{Allowed: false, Limit: 5, ResetAt: now.Add(42 * time.Second)}, nil
	})

	rec := httptest.NewRecorder()
	rateLimit(limiter, func() time.Time { return now })(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	t.Parallel()

	var key string
	limiter := limiterFunc(func(_ context.Context, k string) (ratelimit.Result, error) {
		key = k
		return ratelimit.Result{}, errors.New("redis: connection refused")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	rec := httptest.NewRecorder()
	RateLimit(limiter)(okHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "192.0.2.7:/api/auth/login", key)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
