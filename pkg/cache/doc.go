// Package cache provides TTL caching for feed pages and route metadata.
//
// The cache is an explicit service handed to the components that need
// it, never a package-level singleton. It consists of a Store backend
// and a Manager on top:
//
// - MemoryStore: bounded in-process map with LRU eviction and a periodic sweep
// - RedisStore: Redis backend with server-side TTL expiry
// - Manager: hit/miss accounting, fill-through reads, change events
//
// # Basic Usage
//
//	// Create a bounded in-memory store
//	store := cache.NewMemoryStore(cache.DefaultMemoryConfig(), nil, logger)
//	defer store.Close()
//
//	// Create the manager (bus may be nil)
//	manager := cache.NewManager(store, bus, nil, logger)
//
//	// Build a deterministic key
//	key := cache.FeedKey{Feed: "home", Page: 3, BatchSize: 20}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key.String())
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from the source
//	}
//
// # Fill-Through Reads
//
//	// Fetch-and-cache in one call
//	value, err := manager.GetOrFill(ctx, key.String(), 5*time.Minute,
//		func(ctx context.Context) ([]byte, error) {
//			return fetchPageBytes(ctx, 3)
//		})
//
// # Change Events
//
// Every successful write is announced on the event bus under
// event.TopicCacheUpdated, so components holding derived state can
// refresh without polling the store.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - feedkit_cache_hits_total{backend} - Cache hits
//   - feedkit_cache_misses_total{backend} - Cache misses
//   - feedkit_cache_evictions_total{reason} - Memory store evictions
//   - feedkit_cache_entries - Memory store entry count
//   - feedkit_cache_errors_total{operation} - Cache operation errors
package cache
