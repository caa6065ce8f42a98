// Package event provides the typed publish/subscribe bus that connects
// the loading orchestration components to the surrounding application.
// The message set is fixed: navigation route changes, content-ready
// notifications, and cache updates. Components subscribe to the topics
// they care about and never reach into each other directly.
package event

import "time"

// Topic identifies one of the bus's fixed message types.
type Topic string

const (
	// TopicRouteChanged is published when the application navigates to a
	// new route. Payload is RoutePayload.
	TopicRouteChanged Topic = "nav.route_changed"

	// TopicContentReady is published when the content for the current
	// route has rendered and any full-screen wait can end. Payload is
	// RoutePayload.
	TopicContentReady Topic = "nav.content_ready"

	// TopicCacheUpdated is published by the cache manager after a write.
	// Payload is CachePayload.
	TopicCacheUpdated Topic = "cache.updated"
)

// Event is a single message on the bus.
type Event struct {
	Topic     Topic     // which of the fixed message types this is
	Source    string    // component that published the event
	Timestamp time.Time // publish time, stamped by the bus when zero
	Payload   any       // topic-specific payload, see the Topic docs
}

// RoutePayload carries the route key for navigation-related topics.
type RoutePayload struct {
	Key string
}

// CachePayload carries the cache key for TopicCacheUpdated.
type CachePayload struct {
	Key string
}

// RouteChanged builds a TopicRouteChanged event.
func RouteChanged(source, routeKey string) Event {
	return Event{
		Topic:   TopicRouteChanged,
		Source:  source,
		Payload: RoutePayload{Key: routeKey},
	}
}

// ContentReady builds a TopicContentReady event.
func ContentReady(source, routeKey string) Event {
	return Event{
		Topic:   TopicContentReady,
		Source:  source,
		Payload: RoutePayload{Key: routeKey},
	}
}

// CacheUpdated builds a TopicCacheUpdated event.
func CacheUpdated(source, key string) Event {
	return Event{
		Topic:   TopicCacheUpdated,
		Source:  source,
		Payload: CachePayload{Key: key},
	}
}
