package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
)

// RedisStore is a Store backed by Redis. Entry TTLs map to Redis key
// TTLs, so expired entries disappear server-side; the expiry check on
// Get only covers clock skew between client and server.
type RedisStore struct {
	client *redis.Client
	clk    clock.Clock
	logger zerolog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Store backed by the given Redis client.
// A nil clk falls back to the system clock.
func NewRedisStore(client *redis.Client, clk clock.Clock, logger zerolog.Logger) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &RedisStore{
		client: client,
		clk:    clk,
		logger: logger.With().Str("component", "cache-redis").Logger(),
	}
}

// Name identifies the backend for metrics and logs.
func (s *RedisStore) Name() string { return "redis" }

// Get retrieves an entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired(s.clk.Now()) {
		_ = s.Delete(ctx, key)
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Set stores an entry with a Redis TTL derived from the entry's
// Expires field. Entries that are already expired are not stored.
func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL(s.clk.Now())
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Len reports how many keys the Redis database holds.
func (s *RedisStore) Len(ctx context.Context) (int64, error) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("redis dbsize: %w", err)
	}
	return n, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
