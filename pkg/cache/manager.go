package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
	"github.com/feedkit/feedkit/pkg/event"
)

// Manager wraps a Store with hit/miss accounting, fill-through reads
// and change events. Writes are announced on the event bus under
// event.TopicCacheUpdated so interested components can refresh.
type Manager struct {
	store  Store
	bus    *event.Bus
	clk    clock.Clock
	logger zerolog.Logger
}

// NewManager creates a cache manager on top of the given store. The
// bus may be nil; writes are then not announced. A nil clk falls back
// to the system clock.
func NewManager(store Store, bus *event.Bus, clk clock.Clock, logger zerolog.Logger) *Manager {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Manager{
		store:  store,
		bus:    bus,
		clk:    clk,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Backend reports the name of the underlying store.
func (m *Manager) Backend() string {
	return m.store.Name()
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (m *Manager) Get(ctx context.Context, key string) (*Entry, error) {
	entry, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			CacheMisses.WithLabelValues(m.store.Name()).Inc()
		}
		return nil, err
	}
	CacheHits.WithLabelValues(m.store.Name()).Inc()
	return entry, nil
}

// Set stores a cache entry and announces the write on the bus.
func (m *Manager) Set(ctx context.Context, key string, entry *Entry) error {
	if err := m.store.Set(ctx, key, entry); err != nil {
		return err
	}
	m.announce(ctx, key)
	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}

// GetOrFill retrieves the value for key, invoking fill on a miss and
// caching its result for ttl. Concurrent callers that miss the same
// key may each invoke fill; the last write wins. A failed write is
// logged but does not fail the call once fill has produced a value.
func (m *Manager) GetOrFill(ctx context.Context, key string, ttl time.Duration, fill func(context.Context) ([]byte, error)) ([]byte, error) {
	entry, err := m.Get(ctx, key)
	if err == nil {
		return entry.Value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	value, err := fill(ctx)
	if err != nil {
		return nil, fmt.Errorf("fill %q: %w", key, err)
	}

	now := m.clk.Now()
	fresh := &Entry{
		Value:    value,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}
	if err := m.Set(ctx, key, fresh); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache filled value")
	}
	return value, nil
}

// Touch extends the lifetime of an existing entry to now+ttl. This is
// useful when a route is revisited and its metadata should stay warm.
// Returns ErrCacheMiss if the entry is gone.
func (m *Manager) Touch(ctx context.Context, key string, ttl time.Duration) error {
	entry, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	entry.Expires = m.clk.Now().Add(ttl)
	return m.Set(ctx, key, entry)
}

func (m *Manager) announce(ctx context.Context, key string) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, event.CacheUpdated("cache", key)); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("Failed to publish cache update")
	}
}
