package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pricingCacheKey = "storefront:settings:pricing"

// RedisSettingsCache keeps the pricing snapshot in Redis. Any Redis failure
// is logged and treated as a miss.
type RedisSettingsCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSettingsCache constructs RedisSettingsCache.
func NewRedisSettingsCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisSettingsCache {
	return &RedisSettingsCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisSettingsCache) Get(ctx context.Context) (*PricingSettings, bool) {
	data, err := c.client.Get(ctx, pricingCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("settings cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var settings PricingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		c.logger.Warn("settings cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	return &settings, true
}

func (c *RedisSettingsCache) Set(ctx context.Context, settings PricingSettings) {
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, pricingCacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", zap.Error(err))
	}
}

func (c *RedisSettingsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, pricingCacheKey).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", zap.Error(err))
	}
}
