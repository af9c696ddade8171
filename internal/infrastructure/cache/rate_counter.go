package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRatePrefix = "fitcoach:ratelimit:"

// RateCounter counts hits per key in fixed windows.
// Hit returns the count including this hit and when the window resets.
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// RedisRateCounter shares windows across instances using INCR and PEXPIRE
type RedisRateCounter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRateCounter creates a Redis backed counter
func NewRedisRateCounter(client redis.UniversalClient, prefix string) *RedisRateCounter {
	if prefix == "" {
		prefix = defaultRatePrefix
	}
	return &RedisRateCounter{client: client, prefix: prefix, now: time.Now}
}

func (c *RedisRateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := c.prefix + key

	count, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count rate limit hit: %w", err)
	}
	// only the first hit opens the window so it does not slide
	if count == 1 {
		if err := c.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	ttl, err := c.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read rate limit window: %w", err)
	}

	remaining := ttl
	if remaining <= 0 {
		remaining = window
	}
	return count, c.now().Add(remaining), nil
}

type rateWindow struct {
	count   int64
	resetAt time.Time
}

// InMemoryRateCounter counts hits in process memory
type InMemoryRateCounter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

// NewInMemoryRateCounter creates an in-memory counter
func NewInMemoryRateCounter() *InMemoryRateCounter {
	return &InMemoryRateCounter{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

func (c *InMemoryRateCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		c.windows[key] = w
		c.evictExpired(now)
	}
	w.count++
	return w.count, w.resetAt, nil
}

// evictExpired keeps the map from growing with one-off clients
func (c *InMemoryRateCounter) evictExpired(now time.Time) {
	if len(c.windows) < 1024 {
		return
	}
	for k, w := range c.windows {
		if !now.Before(w.resetAt) {
			delete(c.windows, k)
		}
	}
}

var (
	_ RateCounter = (*RedisRateCounter)(nil)
	_ RateCounter = (*InMemoryRateCounter)(nil)
)
