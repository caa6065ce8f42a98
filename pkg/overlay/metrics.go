package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cyclesStarted counts overlay show cycles
	cyclesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedkit_overlay_cycles_total",
			Help: "Total number of overlay show cycles started",
		},
	)

	// timeouts counts cycles ended by the hard timeout
	timeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedkit_overlay_timeouts_total",
			Help: "Total number of overlay cycles that hit the hard timeout",
		},
	)

	// visibleSeconds tracks how long the overlay stayed up per cycle
	visibleSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedkit_overlay_visible_seconds",
			Help:    "Overlay visible duration per cycle in seconds",
			Buckets: []float64{0.5, 1, 1.5, 2, 3, 5, 8, 10, 15},
		},
	)
)
