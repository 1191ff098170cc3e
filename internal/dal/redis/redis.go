package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Client wraps the Redis connection used as the catalog cache.
type Client struct {
	*redis.Client
}

// MustNewClient connects to redis.addr and pings it.
func MustNewClient() *Client {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		addr = "redis:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("MEATSHOP_REDIS_PASSWORD"),
		DB:       viper.GetInt("redis.db"),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	slog.Info("Redis connected", "addr", addr)

	return &Client{Client: rdb}
}
