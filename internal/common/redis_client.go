package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisClient builds a client and pings it. A failed ping is
// returned so the caller can fall back to the memory backend.
func NewRedisClient(opts RedisOptions, logger *zap.SugaredLogger) (*redis.Client, error) {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == "" {
		opts.Port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", opts.Host, opts.Port)
	logger.Infow("initializing redis client", "addr", addr, "db", opts.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infow("connected to redis", "addr", addr)
	return client, nil
}
