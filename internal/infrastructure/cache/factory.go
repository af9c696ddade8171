package cache

import (
	"errors"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrRedisRequired is returned when Redis is unavailable and fallback is disabled
var ErrRedisRequired = errors.New("cache: Redis is required but unavailable")

// Factory builds the Redis backed stores, or their in-memory equivalents
// when no Redis client is available
type Factory struct {
	client                redis.UniversalClient
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether a nil client falls back to process-local stores.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a factory. client may be nil when Redis could not be reached.
func NewFactory(client redis.UniversalClient, opts ...FactoryOption) *Factory {
	f := &Factory{
		client:                client,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HasRedis reports whether the factory builds Redis backed stores
func (f *Factory) HasRedis() bool {
	return f.client != nil
}

// IdempotencyStore returns the webhook event idempotency store
func (f *Factory) IdempotencyStore() (shared.IdempotencyStore, error) {
	if f.client != nil {
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, ""), nil
	}
	if !f.allowInMemoryFallback {
		return nil, ErrRedisRequired
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. " +
		"Duplicate webhook deliveries may be processed by different instances.")
	return NewInMemoryIdempotencyStore(), nil
}

// JSONCache returns the cache used for provider catalog listings
func (f *Factory) JSONCache() (JSONCache, error) {
	if f.client != nil {
		return NewRedisJSONCache(f.client, ""), nil
	}
	if !f.allowInMemoryFallback {
		return nil, ErrRedisRequired
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory catalog cache")
	return NewInMemoryJSONCache(), nil
}

// RateCounter returns the fixed-window counter backing the rate limiter
func (f *Factory) RateCounter() (RateCounter, error) {
	if f.client != nil {
		return NewRedisRateCounter(f.client, ""), nil
	}
	if !f.allowInMemoryFallback {
		return nil, ErrRedisRequired
	}
	f.logger.Warn("Redis unavailable, rate limits are enforced per instance")
	return NewInMemoryRateCounter(), nil
}
