package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend"}, // "memory", "redis"
	)

	// CacheEvictions tracks entries dropped from the memory store
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_cache_evictions_total",
			Help: "Total number of cache entries evicted",
		},
		[]string{"reason"}, // "expired", "capacity"
	)

	// CacheEntries tracks how many entries the memory store holds
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedkit_cache_entries",
			Help: "Current number of entries in the in-memory cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
