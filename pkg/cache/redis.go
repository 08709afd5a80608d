package cache

import (
	"context"
	"fmt"
	"time"

	"movie-comments/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client for config and verifies it with a ping.
func Connect(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}
	return client, nil
}
