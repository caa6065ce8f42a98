package event

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	var received Event

	bus.Subscribe(TopicRouteChanged, func(ctx context.Context, e Event) {
		received = e
	})

	if err := bus.Publish(context.Background(), RouteChanged("test", "home")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if received.Topic != TopicRouteChanged {
		t.Errorf("received.Topic = %q, want %q", received.Topic, TopicRouteChanged)
	}
	payload, ok := received.Payload.(RoutePayload)
	if !ok {
		t.Fatalf("received.Payload type = %T, want RoutePayload", received.Payload)
	}
	if payload.Key != "home" {
		t.Errorf("payload.Key = %q, want %q", payload.Key, "home")
	}
	if received.Timestamp.IsZero() {
		t.Error("Timestamp was not stamped on publish")
	}
}

func TestPublishKeepsTimestamp(t *testing.T) {
	bus := NewBus(testLogger())
	var received Event
	bus.Subscribe(TopicCacheUpdated, func(ctx context.Context, e Event) {
		received = e
	})

	stamp := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e := CacheUpdated("cache", "item:42")
	e.Timestamp = stamp
	if err := bus.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !received.Timestamp.Equal(stamp) {
		t.Errorf("Timestamp = %v, want caller's %v", received.Timestamp, stamp)
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	bus := NewBus(testLogger())
	if err := bus.Publish(context.Background(), Event{}); err == nil {
		t.Error("Publish() with empty topic did not error")
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	bus.SubscribeAll(func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(context.Background(), RouteChanged("test", "a"))
	bus.Publish(context.Background(), ContentReady("test", "a"))

	if got := atomic.LoadInt32(&count); got != 2 {
		t.Errorf("SubscribeAll handler called %d times, want 2", got)
	}
}

func TestTopicFiltering(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	bus.Subscribe(TopicContentReady, func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(context.Background(), RouteChanged("test", "a"))
	bus.Publish(context.Background(), CacheUpdated("test", "k"))

	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("handler called %d times for other topics, want 0", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	unsub := bus.Subscribe(TopicRouteChanged, func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(context.Background(), RouteChanged("test", "a"))
	unsub()
	unsub() // double unsubscribe is harmless
	bus.Publish(context.Background(), RouteChanged("test", "b"))

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", got)
	}
}

func TestDeliveryOrder(t *testing.T) {
	bus := NewBus(testLogger())
	var order []int

	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(TopicRouteChanged, func(ctx context.Context, e Event) {
			order = append(order, i)
		})
	}

	bus.Publish(context.Background(), RouteChanged("test", "a"))
	for i, got := range order {
		if got != i {
			t.Fatalf("delivery order = %v, want subscription order", order)
		}
	}
}

func TestPublishAsync(t *testing.T) {
	bus := NewBus(testLogger())
	var wg sync.WaitGroup
	var count int32

	wg.Add(2)
	bus.Subscribe(TopicContentReady, func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})
	bus.SubscribeAll(func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})

	bus.PublishAsync(context.Background(), ContentReady("test", "a"))

	wg.Wait()
	if got := atomic.LoadInt32(&count); got != 2 {
		t.Errorf("async handlers called %d times, want 2", got)
	}
}

func TestHandlerPanicRecovery(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	bus.Subscribe(TopicRouteChanged, func(ctx context.Context, e Event) {
		panic("test panic")
	})
	bus.Subscribe(TopicRouteChanged, func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	// Must not panic, and the second handler must still run.
	bus.Publish(context.Background(), RouteChanged("test", "a"))

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("second handler called %d times, want 1", got)
	}
}

func TestNoSubscribersOK(t *testing.T) {
	bus := NewBus(testLogger())

	if err := bus.Publish(context.Background(), RouteChanged("test", "a")); err != nil {
		t.Fatalf("Publish() with no subscribers error = %v", err)
	}
}
