package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/service-orders/internal/domain"
)

// ReportCache stores computed order statistics between mutations.
//
// Entries are keyed by a generation that Invalidate advances. A reader takes the generation
// before querying the store and writes back under it, so a result computed before a mutation
// lands under a generation nobody reads anymore.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	// GetStats returns false when nothing is cached for the generation.
	GetStats(ctx context.Context, generation int64) (domain.OrderStats, bool, error)
	SetStats(ctx context.Context, generation int64, stats domain.OrderStats) error
	Invalidate(ctx context.Context) error
}

const (
	statsCacheKeyPrefix = "service-orders:report:stats:"
	generationCacheKey  = "service-orders:report:generation"
)

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReportCache caches statistics per generation with the given TTL.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	return &redisReportCache{client: client, ttl: ttl}
}

func (c *redisReportCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationCacheKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisReportCache) GetStats(ctx context.Context, generation int64) (domain.OrderStats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.OrderStats{}, false, nil
	}
	if err != nil {
		return domain.OrderStats{}, false, err
	}
	var stats domain.OrderStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.OrderStats{}, false, err
	}
	return stats, true, nil
}

func (c *redisReportCache) SetStats(ctx context.Context, generation int64, stats domain.OrderStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(generation), payload, c.ttl).Err()
}

func (c *redisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationCacheKey).Err()
}

func statsKey(generation int64) string {
	return fmt.Sprintf("%s%d", statsCacheKeyPrefix, generation)
}
