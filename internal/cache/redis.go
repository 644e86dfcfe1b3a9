package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "mortgage:breakdown:"

// Redis stores breakdowns as JSON values with a TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects lazily to the Redis server at addr.
func NewRedis(addr string, db int, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	}), prefix, ttl, logger)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Get returns the stored breakdown. Lookup failures are logged and reported
// as misses.
func (r *Redis) Get(ctx context.Context, key string) (mortgage.PaymentBreakdown, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed",
				zap.String("op", "cache.Redis.Get"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return mortgage.PaymentBreakdown{}, false
	}

	var b mortgage.PaymentBreakdown
	if err := json.Unmarshal(val, &b); err != nil {
		r.logger.Warn("discarding malformed cached breakdown",
			zap.String("op", "cache.Redis.Get"),
			zap.String("key", key),
			zap.Error(err),
		)
		return mortgage.PaymentBreakdown{}, false
	}
	return b, true
}

// Set stores b under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, b mortgage.PaymentBreakdown) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store breakdown: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
