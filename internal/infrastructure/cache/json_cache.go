package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultJSONPrefix = "fitcoach:cache:"

// JSONCache stores JSON-encoded values under string keys.
// Get reports found=false on a miss; a decode failure is returned as an error.
type JSONCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisJSONCache implements JSONCache on Redis strings
type RedisJSONCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisJSONCache creates a Redis backed JSON cache
func NewRedisJSONCache(client redis.UniversalClient, prefix string) *RedisJSONCache {
	if prefix == "" {
		prefix = defaultJSONPrefix
	}
	return &RedisJSONCache{client: client, prefix: prefix}
}

func (c *RedisJSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisJSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *RedisJSONCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

type jsonEntry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// InMemoryJSONCache implements JSONCache in process memory.
// Values are stored encoded so callers never share mutable state.
type InMemoryJSONCache struct {
	mu      sync.RWMutex
	entries map[string]jsonEntry
	now     func() time.Time
}

// NewInMemoryJSONCache creates an empty in-memory JSON cache
func NewInMemoryJSONCache() *InMemoryJSONCache {
	return &InMemoryJSONCache{
		entries: make(map[string]jsonEntry),
		now:     time.Now,
	}
}

func (c *InMemoryJSONCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *InMemoryJSONCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	entry := jsonEntry{data: data}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *InMemoryJSONCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

var (
	_ JSONCache = (*RedisJSONCache)(nil)
	_ JSONCache = (*InMemoryJSONCache)(nil)
)
