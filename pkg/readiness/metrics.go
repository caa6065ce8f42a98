package readiness

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// skeletonHold tracks how long items stayed in the loading set
	skeletonHold = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedkit_skeleton_hold_seconds",
			Help:    "Time items spent in the loading set, including anti-flicker holds",
			Buckets: []float64{0.05, 0.1, 0.2, 0.35, 0.5, 1, 2.5, 5, 10},
		},
	)

	// itemsLoading tracks the current loading-set size
	itemsLoading = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedkit_items_loading",
			Help: "Number of items currently in the loading set",
		},
	)
)
