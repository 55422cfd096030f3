package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/keygate/internal/config"
)

// Limiter is the common surface over the redis and in-process buckets.
type Limiter interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (bool, error)
}

func NewFromConfig(cfg config.Config, log *zap.Logger) Limiter {
	if cfg.RedisAddr == "" {
		return NewLocalBucket()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	log.Info("rate limiter using redis", zap.String("addr", cfg.RedisAddr))
	return NewTokenBucket(client)
}

var Module = fx.Module("ratelimit",
	fx.Provide(NewFromConfig),
)
