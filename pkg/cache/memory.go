package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
)

// Defaults for the in-memory store.
const (
	DefaultMaxEntries    = 512
	DefaultSweepInterval = 1 * time.Minute
)

// MemoryConfig holds configuration for a MemoryStore.
type MemoryConfig struct {
	// MaxEntries bounds the store. When full, the least recently used
	// entry is evicted to make room.
	// Default: 512
	MaxEntries int

	// SweepInterval is how often expired entries are removed even when
	// nobody reads them.
	// Default: 1m
	SweepInterval time.Duration
}

// DefaultMemoryConfig returns a MemoryConfig with default values.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MaxEntries:    DefaultMaxEntries,
		SweepInterval: DefaultSweepInterval,
	}
}

// MemoryStore is a bounded in-process Store with per-entry TTL and LRU
// eviction. Expired entries are dropped lazily on Get and by a
// periodic sweep.
type MemoryStore struct {
	maxEntries int
	sweepEvery time.Duration
	clk        clock.Clock
	logger     zerolog.Logger

	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	sweep    clock.Timer
	sweepGen uint64
	closed   bool
}

type memoryItem struct {
	key   string
	entry Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore and starts its sweep schedule.
// A nil clk falls back to the system clock.
func NewMemoryStore(cfg MemoryConfig, clk clock.Clock, logger zerolog.Logger) *MemoryStore {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if clk == nil {
		clk = clock.System()
	}
	m := &MemoryStore{
		maxEntries: cfg.MaxEntries,
		sweepEvery: cfg.SweepInterval,
		clk:        clk,
		logger:     logger.With().Str("component", "cache-memory").Logger(),
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
	m.mu.Lock()
	m.armSweepLocked()
	m.mu.Unlock()
	return m
}

// Name identifies the backend for metrics and logs.
func (m *MemoryStore) Name() string { return "memory" }

// Get retrieves an entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (m *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	el, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	item := el.Value.(*memoryItem)
	if item.entry.IsExpired(m.clk.Now()) {
		m.removeLocked(el, "expired")
		return nil, ErrCacheMiss
	}

	m.order.MoveToFront(el)
	entry := item.entry
	return &entry, nil
}

// Set stores an entry. An existing key is replaced in place; a new key
// may evict the least recently used entry when the store is full.
// Entries that are already expired are not stored.
func (m *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}

	if entry.TTL(m.clk.Now()) <= 0 {
		// Already expired, don't cache
		return nil
	}

	if el, ok := m.items[key]; ok {
		el.Value.(*memoryItem).entry = *entry
		m.order.MoveToFront(el)
		return nil
	}

	if m.order.Len() >= m.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.removeLocked(oldest, "capacity")
		}
	}

	el := m.order.PushFront(&memoryItem{key: key, entry: *entry})
	m.items[key] = el
	CacheEntries.Set(float64(m.order.Len()))
	return nil
}

// Delete removes an entry.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if el, ok := m.items[key]; ok {
		delete(m.items, key)
		m.order.Remove(el)
		CacheEntries.Set(float64(m.order.Len()))
	}
	return nil
}

// Len reports how many entries the store holds, including expired
// entries the sweep has not reached yet.
func (m *MemoryStore) Len(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	return int64(m.order.Len()), nil
}

// Close stops the sweep schedule and drops all entries. Further calls
// return ErrStoreClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.sweep != nil {
		m.sweep.Stop()
		m.sweep = nil
	}
	m.items = make(map[string]*list.Element)
	m.order.Init()
	CacheEntries.Set(0)
	return nil
}

func (m *MemoryStore) armSweepLocked() {
	m.sweepGen++
	gen := m.sweepGen
	m.sweep = m.clk.AfterFunc(m.sweepEvery, func() { m.sweepDue(gen) })
}

// sweepDue drops expired entries and re-arms. A generation mismatch
// means the schedule was replaced; the callback is then stale and does
// nothing.
func (m *MemoryStore) sweepDue(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.sweepGen {
		return
	}

	now := m.clk.Now()
	removed := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryItem).entry.IsExpired(now) {
			m.removeLocked(el, "expired")
			removed++
		}
		el = prev
	}
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("Swept expired cache entries")
	}
	m.armSweepLocked()
}

func (m *MemoryStore) removeLocked(el *list.Element, reason string) {
	item := el.Value.(*memoryItem)
	delete(m.items, item.key)
	m.order.Remove(el)
	CacheEvictions.WithLabelValues(reason).Inc()
	CacheEntries.Set(float64(m.order.Len()))
}
