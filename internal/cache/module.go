package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/config"
)

const namespace = "erpcore"

// Module provides the redis backed cache, or Nop when REDIS_ADDR is empty.
var Module = fx.Options(
	fx.Provide(newCache),
)

func newCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) Cache {
	if cfg.RedisAddr == "" {
		logger.Info("redis not configured, caching disabled")
		return Nop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				// Cache outages degrade to direct reads.
				logger.Warn("redis ping failed", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisCache(client, namespace)
}
