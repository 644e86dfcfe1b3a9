// Package cache memoizes payment breakdowns by their inputs so repeated
// requests for the same loan skip recomputation. Entries expire; nothing here
// is a history of past calculations.
package cache

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"go.uber.org/zap"
)

// Cache stores breakdowns keyed by Key.
type Cache interface {
	Get(ctx context.Context, key string) (mortgage.PaymentBreakdown, bool)
	Set(ctx context.Context, key string, b mortgage.PaymentBreakdown) error
}

// Config selects and tunes the cache backend.
type Config struct {
	Backend    string        `yaml:"backend"` // none, memory, redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"maxEntries"`
	RedisAddr  string        `yaml:"redisAddr"`
	RedisDB    int           `yaml:"redisDB"`
	KeyPrefix  string        `yaml:"keyPrefix"`
}

// Key returns a deterministic key for the inputs. Amounts are encoded by their
// exact bit patterns so distinct float inputs never share an entry.
func Key(in mortgage.LoanInputs) string {
	return fmt.Sprintf("%016x:%016x:%016x:%d",
		math.Float64bits(in.LoanAmount),
		math.Float64bits(in.DownPayment),
		math.Float64bits(in.InterestRate),
		in.LoanTermYears,
	)
}

// New builds the backend named in cfg. A nil Cache is returned for "none".
func New(cfg Config, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	switch cfg.Backend {
	case "", constants.CacheBackendNone:
		return nil, nil
	case constants.CacheBackendMemory:
		logger.Info("using in-memory result cache",
			zap.String("op", "cache.New"),
			zap.Duration("ttl", ttl),
			zap.Int("maxEntries", cfg.MaxEntries),
		)
		return NewMemory(ttl, cfg.MaxEntries), nil
	case constants.CacheBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires redisAddr")
		}
		logger.Info("using redis result cache",
			zap.String("op", "cache.New"),
			zap.String("addr", cfg.RedisAddr),
			zap.Duration("ttl", ttl),
		)
		return NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.KeyPrefix, ttl, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// Lookup returns the cached breakdown for in, computing and storing it on a
// miss. The second return reports a hit. A nil cache always computes, and
// non-finite results are never stored.
func Lookup(ctx context.Context, c Cache, logger *zap.Logger, in mortgage.LoanInputs) (mortgage.PaymentBreakdown, bool) {
	if c == nil {
		return in.Compute(), false
	}

	key := Key(in)
	if b, ok := c.Get(ctx, key); ok {
		return b, true
	}

	b := in.Compute()
	if !b.IsFinite() {
		return b, false
	}
	if err := c.Set(ctx, key, b); err != nil && logger != nil {
		logger.Warn("failed to store breakdown in cache",
			zap.String("op", "cache.Lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return b, false
}
