//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/ciutil"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/ratelimit"
)

func TestIntegration_StatsCacheAndLimiter(t *testing.T) {
	addr := ciutil.RequireService(t, ciutil.EnvTestRedisAddr)
	ctx := context.Background()

	client, err := Connect(ctx, config.CacheConfig{RedisAddr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	owner := uuid.New()
	c := NewStatsCache(client, time.Minute, nil)

	_, gen, ok := c.Get(ctx, owner)
	assert.False(t, ok)

	stats := domain.NewTaskStats()
	stats.Total = 4
	stats.ByStatus[domain.StatusCompleted] = 4
	c.Set(ctx, owner, gen, stats)

	got, _, ok := c.Get(ctx, owner)
	require.True(t, ok)
	assert.Equal(t, stats, got)

	require.NoError(t, c.Invalidate(ctx, owner))
	_, _, ok = c.Get(ctx, owner)
	assert.False(t, ok)

	c.Set(ctx, owner, gen, stats)
	_, _, ok = c.Get(ctx, owner)
	assert.False(t, ok, "stats computed before the invalidation must not be cached")

	limiter := ratelimit.NewLimiter(client, 2, time.Minute)
	key := "integration:" + owner.String()
	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}
