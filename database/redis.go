// file: database/redis.go
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis. It returns a nil client when REDIS_ADDR is empty so
// callers can fall back to in-process implementations.
func InitRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, using in-memory cache, sessions and notifications")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 100,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Redis connection established", "addr", cfg.RedisAddr)
	return rdb, nil
}
