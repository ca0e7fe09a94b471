package infrastructure

import (
	"fmt"

	"user-rest-service/internal/config"
	redisclient "user-rest-service/pkg/redis"

	"go.uber.org/zap"
)

// NewRedisClient creates a new Redis client with configuration. Returns
// (nil, nil) when Redis is disabled; the cache layer treats a nil client as
// cache-off.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("Redis disabled, caching and rate limiting run without it")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(cfg.Redis, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
