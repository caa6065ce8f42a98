package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/feedkit/feedkit/pkg/clock"
	"github.com/feedkit/feedkit/pkg/event"
)

func newTestManager(t *testing.T) (*Manager, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual()
	store := NewMemoryStore(DefaultMemoryConfig(), clk, testLogger())
	t.Cleanup(func() { store.Close() })
	return NewManager(store, nil, clk, testLogger()), clk
}

func TestNewManager(t *testing.T) {
	manager, _ := newTestManager(t)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if got := manager.Backend(); got != "memory" {
		t.Errorf("Backend() = %q, want memory", got)
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil store")
		}
	}()
	NewManager(nil, nil, nil, testLogger())
}

func TestManager_SetAndGet(t *testing.T) {
	manager, clk := newTestManager(t)
	ctx := context.Background()

	key := FeedKey{Feed: "home", Page: 1, BatchSize: 20}.String()
	entry := &Entry{
		Value:    []byte(`[{"id":"item-0001"}]`),
		Expires:  clk.Now().Add(5 * time.Minute),
		CachedAt: clk.Now(),
	}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(retrieved.Value) != string(entry.Value) {
		t.Errorf("Value mismatch: got %s, want %s", retrieved.Value, entry.Value)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Get(context.Background(), "feedkit:route:nonexistent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_GetOrFill(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	fills := 0
	fill := func(context.Context) ([]byte, error) {
		fills++
		return []byte("fetched"), nil
	}

	value, err := manager.GetOrFill(ctx, "k", 5*time.Minute, fill)
	if err != nil {
		t.Fatalf("GetOrFill failed: %v", err)
	}
	if string(value) != "fetched" {
		t.Errorf("value = %s, want fetched", value)
	}
	if fills != 1 {
		t.Fatalf("fills = %d after miss, want 1", fills)
	}

	// Second read is served from cache.
	value, err = manager.GetOrFill(ctx, "k", 5*time.Minute, fill)
	if err != nil {
		t.Fatalf("GetOrFill failed: %v", err)
	}
	if string(value) != "fetched" {
		t.Errorf("value = %s, want fetched", value)
	}
	if fills != 1 {
		t.Errorf("fills = %d after hit, want 1", fills)
	}
}

func TestManager_GetOrFill_Expiry(t *testing.T) {
	manager, clk := newTestManager(t)
	ctx := context.Background()

	fills := 0
	fill := func(context.Context) ([]byte, error) {
		fills++
		return []byte(fmt.Sprintf("fill-%d", fills)), nil
	}

	if _, err := manager.GetOrFill(ctx, "k", 5*time.Minute, fill); err != nil {
		t.Fatalf("GetOrFill failed: %v", err)
	}

	clk.Advance(5*time.Minute + time.Second)
	value, err := manager.GetOrFill(ctx, "k", 5*time.Minute, fill)
	if err != nil {
		t.Fatalf("GetOrFill failed: %v", err)
	}
	if string(value) != "fill-2" {
		t.Errorf("value = %s, want fill-2 (refetched after expiry)", value)
	}
}

func TestManager_GetOrFill_FillError(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	cause := errors.New("source down")
	_, err := manager.GetOrFill(ctx, "k", 5*time.Minute, func(context.Context) ([]byte, error) {
		return nil, cause
	})
	if !errors.Is(err, cause) {
		t.Fatalf("GetOrFill error = %v, want wrapped cause", err)
	}

	// The failure was not cached.
	if _, err := manager.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after failed fill = %v, want ErrCacheMiss", err)
	}
}

func TestManager_Touch(t *testing.T) {
	manager, clk := newTestManager(t)
	ctx := context.Background()

	entry := &Entry{
		Value:   []byte("v"),
		Expires: clk.Now().Add(5 * time.Minute),
	}
	if err := manager.Set(ctx, "k", entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := manager.Touch(ctx, "k", 10*time.Minute); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	// Alive past its original expiry.
	clk.Advance(6 * time.Minute)
	if _, err := manager.Get(ctx, "k"); err != nil {
		t.Fatalf("Get after Touch failed: %v", err)
	}

	// Gone after the extended TTL runs out.
	clk.Advance(5 * time.Minute)
	if _, err := manager.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get = %v, want ErrCacheMiss after extended TTL", err)
	}
}

func TestManager_Touch_Missing(t *testing.T) {
	manager, _ := newTestManager(t)

	err := manager.Touch(context.Background(), "missing", time.Minute)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Touch(missing) = %v, want ErrCacheMiss", err)
	}
}

func TestManager_PublishesCacheUpdates(t *testing.T) {
	clk := clock.NewManual()
	store := NewMemoryStore(DefaultMemoryConfig(), clk, testLogger())
	t.Cleanup(func() { store.Close() })
	bus := event.NewBus(testLogger())
	manager := NewManager(store, bus, clk, testLogger())
	ctx := context.Background()

	var mu sync.Mutex
	var keys []string
	unsub := bus.Subscribe(event.TopicCacheUpdated, func(_ context.Context, e event.Event) {
		payload, ok := e.Payload.(event.CachePayload)
		if !ok {
			t.Errorf("payload type = %T, want event.CachePayload", e.Payload)
			return
		}
		mu.Lock()
		keys = append(keys, payload.Key)
		mu.Unlock()
	})
	defer unsub()

	entry := &Entry{Value: []byte("v"), Expires: clk.Now().Add(time.Minute)}
	if err := manager.Set(ctx, "k1", entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.GetOrFill(ctx, "k2", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("v"), nil
	}); err != nil {
		t.Fatalf("GetOrFill failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"k1", "k2"}
	if len(keys) != len(want) {
		t.Fatalf("announced keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("announced keys = %v, want %v", keys, want)
			break
		}
	}
}

func TestManager_Delete(t *testing.T) {
	manager, clk := newTestManager(t)
	ctx := context.Background()

	entry := &Entry{Value: []byte("v"), Expires: clk.Now().Add(time.Minute)}
	if err := manager.Set(ctx, "k", entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := manager.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}
