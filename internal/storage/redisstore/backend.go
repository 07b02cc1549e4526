// Package redisstore implements a snapshot backend on a single Redis key.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/redis/go-redis/v9"
)

// Backend stores the snapshot document under one key. SET replaces the value
// atomically, so readers never see a partial snapshot.
type Backend struct {
	client *redis.Client
	key    string
	logger *common.Logger
}

// NewBackend connects to Redis and verifies the connection with PING.
func NewBackend(ctx context.Context, logger *common.Logger, cfg *common.RedisConfig) (*Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	key := cfg.Key
	if key == "" {
		key = "orange:snapshot"
	}

	logger.Debug().Str("address", cfg.Address).Int("db", cfg.DB).Str("key", key).Msg("Redis backend opened")
	return &Backend{client: client, key: key, logger: logger}, nil
}

func (b *Backend) Name() string { return common.BackendRedis }

// ReadSnapshot returns the stored document.
func (b *Backend) ReadSnapshot(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("key '%s': %w", b.key, interfaces.ErrNoSnapshot)
		}
		return nil, fmt.Errorf("failed to get key '%s': %w", b.key, err)
	}
	return data, nil
}

// WriteSnapshot replaces the stored document. No expiry is set.
func (b *Backend) WriteSnapshot(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key '%s': %w", b.key, err)
	}
	return nil
}

// Close closes the Redis connection
func (b *Backend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
