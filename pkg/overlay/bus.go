package overlay

import (
	"context"

	"github.com/feedkit/feedkit/pkg/event"
)

// Attach subscribes the machine to the application's signal bus: a
// route change opens a fresh overlay cycle, content-ready drops the
// wanted signal. The returned function detaches both subscriptions.
func (m *Machine) Attach(bus *event.Bus) func() {
	unsubRoute := bus.Subscribe(event.TopicRouteChanged, func(_ context.Context, e event.Event) {
		key := ""
		if p, ok := e.Payload.(event.RoutePayload); ok {
			key = p.Key
		}
		m.RouteChanged(key)
	})
	unsubReady := bus.Subscribe(event.TopicContentReady, func(_ context.Context, _ event.Event) {
		m.SetWanted(false)
	})

	return func() {
		unsubRoute()
		unsubReady()
	}
}
