package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"iqscalar-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a connected client, or nil when no address is configured.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	log.Printf("Redis connected - %s (db %d)", cfg.Address, cfg.DB)
	return client, nil
}
