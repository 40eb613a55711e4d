// Package cache provides a Redis cache-aside layer for per-owner task
// statistics.
//
// The cache is fail-safe: Redis errors are logged and reported as misses so
// a Redis outage degrades to direct store reads instead of failed requests.
// Task events advance a per-owner generation, so a mutation is visible in the
// next stats read even when it races with a read that is filling the cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// DefaultPrefix namespaces stats keys.
const DefaultPrefix = "taskflow:stats:"

// NoGeneration is returned by Get when the owner's generation could not be
// read. Set ignores snapshots taken at NoGeneration.
const NoGeneration int64 = -1

// setIfCurrent writes the entry in KEYS[2] only while the generation counter
// in KEYS[1] still equals ARGV[1]. A missing counter is generation 0.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// Connect creates a Redis client from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// Counters tracks cache effectiveness.
type Counters struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// StatsCache caches domain.TaskStats per owner.
//
// Every owner has a generation counter that task events increment. An entry
// records the generation it was computed at and is only served while that
// generation is current, so a snapshot read before a mutation can never
// outlive it.
type StatsCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

// entry is the cached representation of an owner's stats.
type entry struct {
	Generation int64            `json:"generation"`
	Stats      domain.TaskStats `json:"stats"`
}

// NewStatsCache creates a stats cache storing entries for ttl.
func NewStatsCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *StatsCache {
	if client == nil {
		panic("redis client cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{
		client: client,
		prefix: DefaultPrefix,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "stats_cache")),
	}
}

var _ events.EventHandler = (*StatsCache)(nil)

func (c *StatsCache) key(ownerID uuid.UUID) string {
	return c.prefix + ownerID.String()
}

func (c *StatsCache) generationKey(ownerID uuid.UUID) string {
	return c.prefix + "gen:" + ownerID.String()
}

// Get returns the cached stats for ownerID together with the owner's current
// generation. A caller that misses should compute the stats and pass that
// generation to Set. Any failure is reported as a miss.
func (c *StatsCache) Get(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, int64, bool) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	values, err := c.client.MGet(ctx, c.generationKey(ownerID), c.key(ownerID)).Result()
	if err != nil {
		c.errors.Add(1)
		log.Warn("stats cache read failed", slog.String("error", err.Error()))
		return domain.TaskStats{}, NoGeneration, false
	}

	generation, err := parseGeneration(values[0])
	if err != nil {
		c.errors.Add(1)
		log.Warn("stats generation is corrupt", slog.String("error", err.Error()))
		return domain.TaskStats{}, NoGeneration, false
	}

	raw, ok := values[1].(string)
	if !ok {
		c.misses.Add(1)
		return domain.TaskStats{}, generation, false
	}

	e := entry{Stats: domain.NewTaskStats()}
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.errors.Add(1)
		log.Warn("stats cache entry is corrupt", slog.String("error", err.Error()))
		return domain.TaskStats{}, generation, false
	}
	if e.Generation != generation {
		c.misses.Add(1)
		return domain.TaskStats{}, generation, false
	}

	c.hits.Add(1)
	return e.Stats, generation, true
}

// Set stores stats computed at generation for ownerID. The write is dropped
// when the owner's tasks changed after generation was read. Failures are
// logged and otherwise ignored.
func (c *StatsCache) Set(ctx context.Context, ownerID uuid.UUID, generation int64, stats domain.TaskStats) {
	if generation == NoGeneration {
		return
	}
	log := logger.FromContextOrDefault(ctx, c.logger)

	data, err := json.Marshal(entry{Generation: generation, Stats: stats})
	if err != nil {
		c.errors.Add(1)
		log.Warn("stats cache write failed", slog.String("error", err.Error()))
		return
	}

	stored, err := setIfCurrent.Run(ctx, c.client,
		[]string{c.generationKey(ownerID), c.key(ownerID)},
		strconv.FormatInt(generation, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.errors.Add(1)
		log.Warn("stats cache write failed", slog.String("error", err.Error()))
		return
	}
	if stored == 0 {
		log.Debug("discarded stats computed at a superseded generation",
			slog.Int64("generation", generation))
	}
}

// Invalidate advances the owner's generation and drops the cached entry.
// Advancing the generation alone is enough to stop the entry being served.
func (c *StatsCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	genKey := c.generationKey(ownerID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		if c.ttl > 0 {
			// Outlives every entry written under an earlier generation.
			pipe.PExpire(ctx, genKey, 2*c.ttl)
		}
		pipe.Del(ctx, c.key(ownerID))
		return nil
	})
	if err != nil {
		c.errors.Add(1)
		return fmt.Errorf("failed to invalidate stats for %s: %w", ownerID, err)
	}
	return nil
}

// HandleEvent invalidates the owner's stats after any task mutation.
func (c *StatsCache) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	switch event.Type {
	case events.TaskCreated, events.TaskUpdated, events.TaskDeleted:
		return c.Invalidate(ctx, event.OwnerID)
	}
	return nil
}

// Counters returns a snapshot of the hit, miss and error counts.
func (c *StatsCache) Counters() Counters {
	return Counters{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}

func parseGeneration(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected generation type %T", value)
	}
}
