// Package metrics provides the centralized Prometheus metrics registry
// for feedkit. All metrics are defined in their respective packages
// (paging, readiness, overlay, event, cache) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by feedkit.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Paging Metrics (pkg/paging):
//   - feedkit_fetches_total{status} (Counter): Page fetches by outcome (success, error)
//   - feedkit_fetch_duration_seconds (Histogram): Page fetch duration
//   - feedkit_stale_results_total (Counter): Fetch results discarded as stale
//   - feedkit_items_loaded_total (Counter): Items appended to feeds
//
// Readiness Metrics (pkg/readiness):
//   - feedkit_skeleton_hold_seconds (Histogram): How long placeholders stayed up
//   - feedkit_items_loading (Gauge): Items currently tracked as loading
//
// Overlay Metrics (pkg/overlay):
//   - feedkit_overlay_cycles_total (Counter): Overlay show cycles started
//   - feedkit_overlay_timeouts_total (Counter): Cycles ended by the hard timeout
//   - feedkit_overlay_visible_seconds (Histogram): Overlay visibility duration
//
// Event Bus Metrics (pkg/event):
//   - feedkit_events_published_total{topic} (Counter): Events published by topic
//   - feedkit_event_handler_panics_total{topic} (Counter): Recovered handler panics
//
// Cache Metrics (pkg/cache):
//   - feedkit_cache_hits_total{backend} (Counter): Cache hits by backend
//   - feedkit_cache_misses_total{backend} (Counter): Cache misses by backend
//   - feedkit_cache_evictions_total{reason} (Counter): Memory store evictions (expired, capacity)
//   - feedkit_cache_entries (Gauge): Entries held by the in-memory cache
//   - feedkit_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(feedkit_cache_hits_total[5m])) /
//   (sum(rate(feedkit_cache_hits_total[5m])) + sum(rate(feedkit_cache_misses_total[5m])))
//
//   # Fetch Error Rate
//   rate(feedkit_fetches_total{status="error"}[5m])
//
//   # P95 Fetch Latency
//   histogram_quantile(0.95, rate(feedkit_fetch_duration_seconds_bucket[5m]))
//
//   # Overlay Timeout Share
//   rate(feedkit_overlay_timeouts_total[5m]) / rate(feedkit_overlay_cycles_total[5m])
//
//   # Discarded Result Rate
//   rate(feedkit_stale_results_total[5m])
