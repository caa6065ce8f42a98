package paging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// fetchesTotal counts page fetches by outcome
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_fetches_total",
			Help: "Total number of page fetches by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	// fetchDuration tracks source fetch latency
	fetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedkit_fetch_duration_seconds",
			Help:    "Content source fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// staleResults counts superseded fetch results that were discarded
	staleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedkit_stale_results_total",
			Help: "Total number of fetch results discarded as stale",
		},
	)

	// itemsLoaded counts items appended from the source
	itemsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedkit_items_loaded_total",
			Help: "Total number of items loaded from the content source",
		},
	)
)
