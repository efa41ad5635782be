package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisSettingsCacheDegradesWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	cache := NewRedisSettingsCache(client, time.Minute, zap.New(core))
	ctx := context.Background()

	settings, hit := cache.Get(ctx)
	assert.False(t, hit)
	assert.Nil(t, settings)

	cache.Set(ctx, DefaultPricingSettings())
	cache.Invalidate(ctx)

	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, "settings cache read failed", logs.All()[0].Message)
}
