package utils

import (
	"context"
	"fmt"
	"time"

	"emireminder/config"

	"github.com/go-redis/redis/v8"
)

// LockClient backs the sweep lease and the delivery guard.
var LockClient *redis.Client

// InitRedis connects the lock client. It returns nil, nil when Redis is not configured.
func InitRedis() (*redis.Client, error) {
	if config.AppConfig.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	LockClient = client
	return client, nil
}
