package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives events for the topics a subscriber registered for.
// Handlers run synchronously during Publish; long-running work belongs
// behind PublishAsync or the handler's own goroutine.
type Handler func(ctx context.Context, e Event)

// Bus fans events out to subscribers. Delivery within one Publish call
// follows subscription order, and a panicking handler is recovered and
// logged without affecting the remaining handlers.
type Bus struct {
	mu     sync.RWMutex
	logger zerolog.Logger
	nextID uint64
	subs   []*subscription
}

type subscription struct {
	id    uint64
	topic Topic // empty means all topics
	fn    Handler
}

// NewBus creates a Bus that logs delivery problems to logger.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		logger: logger.With().Str("component", "event-bus").Logger(),
	}
}

// Subscribe registers h for events on topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	return b.add(topic, h)
}

// SubscribeAll registers h for every event regardless of topic.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add("", h)
}

func (b *Bus) add(topic Topic, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, topic: topic, fn: h}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() { b.remove(sub.id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to all matching subscribers before returning.
// Publishing to a topic with no subscribers is not an error.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if e.Topic == "" {
		return fmt.Errorf("publish event: empty topic")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.topic == "" || sub.topic == e.Topic {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	eventsPublished.WithLabelValues(string(e.Topic)).Inc()
	b.logger.Debug().
		Str("topic", string(e.Topic)).
		Str("source", e.Source).
		Int("subscribers", len(matched)).
		Msg("Publishing event")

	for _, sub := range matched {
		b.invoke(ctx, sub, e)
	}
	return nil
}

// PublishAsync delivers e on a separate goroutine and returns
// immediately. Delivery order relative to other publishes is not
// guaranteed.
func (b *Bus) PublishAsync(ctx context.Context, e Event) {
	go func() {
		if err := b.Publish(ctx, e); err != nil {
			b.logger.Error().Err(err).Str("topic", string(e.Topic)).Msg("Async publish failed")
		}
	}()
}

func (b *Bus) invoke(ctx context.Context, sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			handlerPanics.WithLabelValues(string(e.Topic)).Inc()
			b.logger.Error().
				Str("topic", string(e.Topic)).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	sub.fn(ctx, e)
}
