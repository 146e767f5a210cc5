package snapshotcache

import (
	"context"
	"fmt"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/redis"
)

// RedisCache stores snapshots under <prefix>:cache:snapshot:<exchange>:<date>
type RedisCache struct {
	cache    *redis.Cache
	exchange string
	logger   *logger.Logger
}

// NewRedisCache creates a Redis-backed snapshot cache
func NewRedisCache(cache *redis.Cache, exchange string, log *logger.Logger) *RedisCache {
	return &RedisCache{
		cache:    cache,
		exchange: exchange,
		logger:   log.WithFields(map[string]interface{}{"module": "snapshot_cache", "exchange": exchange}),
	}
}

// Store implements contracts.SnapshotCache. Finalized daily data never expires.
func (c *RedisCache) Store(ctx context.Context, date contracts.TradingDate, snap contracts.Snapshot) error {
	if snap == nil {
		snap = contracts.Snapshot{}
	}
	if err := c.cache.Set(ctx, redis.SnapshotKey(c.exchange, date.String()), snap, redis.TTLForever); err != nil {
		return fmt.Errorf("cache snapshot %s: %w", date, err)
	}
	return nil
}

// Load implements contracts.SnapshotCache
func (c *RedisCache) Load(ctx context.Context, date contracts.TradingDate) (contracts.Snapshot, bool) {
	var snap contracts.Snapshot
	found, err := c.cache.Get(ctx, redis.SnapshotKey(c.exchange, date.String()), &snap)
	if err != nil {
		c.logger.WithError(err).WithField("date", date.String()).Warn("Cache entry corrupt")
		return nil, false
	}
	if !found {
		return nil, false
	}
	if snap == nil {
		snap = contracts.Snapshot{}
	}
	return snap, true
}
