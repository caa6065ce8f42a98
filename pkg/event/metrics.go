package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsPublished counts events by topic
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_events_published_total",
			Help: "Total number of events published to the bus",
		},
		[]string{"topic"},
	)

	// handlerPanics counts recovered subscriber panics by topic
	handlerPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedkit_event_handler_panics_total",
			Help: "Total number of recovered event handler panics",
		},
		[]string{"topic"},
	)
)
