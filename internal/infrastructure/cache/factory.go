package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/config"
)

// NewRedisClient opens a client and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// IdempotencyStoreFactory picks an idempotency backend from configuration
type IdempotencyStoreFactory struct {
	cfg    config.IdempotencyConfig
	client redis.UniversalClient
	logger *zap.Logger
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithRedisClient supplies the shared Redis client. Without one the redis backend is unavailable.
func WithRedisClient(client redis.UniversalClient) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.client = client
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.IdempotencyConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store. A redis backend without a client
// falls back to memory with a warning, since replays are then only caught per instance.
func (f *IdempotencyStoreFactory) CreateStore() shared.IdempotencyStore {
	if f.cfg.Backend == "redis" {
		if f.client != nil {
			f.logger.Info("using Redis idempotency store")
			return NewRedisIdempotencyStore(f.client, "")
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store")
	}
	return NewInMemoryIdempotencyStore()
}
