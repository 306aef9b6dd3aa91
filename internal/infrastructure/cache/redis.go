package cache

import (
	"context"
	"fmt"
	"time"

	"assetfin-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects and pings once so a bad address fails at startup, not on first request.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB, Password: cfg.Password})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return r, nil
}
