package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func newTestMemoryStore(t *testing.T, cfg MemoryConfig) (*MemoryStore, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual()
	store := NewMemoryStore(cfg, clk, testLogger())
	t.Cleanup(func() { store.Close() })
	return store, clk
}

// entryIn builds an entry that expires ttl from the clock's current time.
func entryIn(clk clock.Clock, value string, ttl time.Duration) *Entry {
	now := clk.Now()
	return &Entry{Value: []byte(value), Expires: now.Add(ttl), CachedAt: now}
}

func TestMemoryStore_SetAndGet(t *testing.T) {
	store, clk := newTestMemoryStore(t, DefaultMemoryConfig())
	ctx := context.Background()

	entry := entryIn(clk, `{"title":"hello"}`, 5*time.Minute)
	if err := store.Set(ctx, "feedkit:route:home", entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := store.Get(ctx, "feedkit:route:home")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(retrieved.Value) != string(entry.Value) {
		t.Errorf("Value mismatch: got %s, want %s", retrieved.Value, entry.Value)
	}
	if !retrieved.Expires.Equal(entry.Expires) {
		t.Errorf("Expires mismatch: got %v, want %v", retrieved.Expires, entry.Expires)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestMemoryStore_Get_CacheMiss(t *testing.T) {
	store, _ := newTestMemoryStore(t, DefaultMemoryConfig())

	_, err := store.Get(context.Background(), "feedkit:route:nonexistent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryStore_Get_ExpiredEntry(t *testing.T) {
	store, clk := newTestMemoryStore(t, DefaultMemoryConfig())
	ctx := context.Background()

	if err := store.Set(ctx, "k", entryIn(clk, "v", 5*time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clk.Advance(5*time.Minute + time.Second)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}

	// The lazy check also removed the entry.
	n, _ := store.Len(ctx)
	if n != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", n)
	}
}

func TestMemoryStore_Set_AlreadyExpired(t *testing.T) {
	store, clk := newTestMemoryStore(t, DefaultMemoryConfig())
	ctx := context.Background()

	entry := entryIn(clk, "v", -time.Hour)
	if err := store.Set(ctx, "k", entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryStore_Set_NilEntry(t *testing.T) {
	store, _ := newTestMemoryStore(t, DefaultMemoryConfig())

	if err := store.Set(context.Background(), "k", nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}

func TestMemoryStore_ReplaceExisting(t *testing.T) {
	store, clk := newTestMemoryStore(t, DefaultMemoryConfig())
	ctx := context.Background()

	if err := store.Set(ctx, "k", entryIn(clk, "old", time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "k", entryIn(clk, "new", time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(entry.Value) != "new" {
		t.Errorf("Value = %s, want new", entry.Value)
	}
	n, _ := store.Len(ctx)
	if n != 1 {
		t.Errorf("Len() = %d after replace, want 1", n)
	}
}

func TestMemoryStore_CapacityEviction(t *testing.T) {
	store, clk := newTestMemoryStore(t, MemoryConfig{MaxEntries: 3})
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, key, entryIn(clk, key, time.Hour)); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	// Touch "a" so "b" becomes the least recently used entry.
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a) failed: %v", err)
	}

	if err := store.Set(ctx, "d", entryIn(clk, "d", time.Hour)); err != nil {
		t.Fatalf("Set(d) failed: %v", err)
	}

	if _, err := store.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(b) error = %v, want ErrCacheMiss after eviction", err)
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, err := store.Get(ctx, key); err != nil {
			t.Errorf("Get(%s) error = %v, want survivor", key, err)
		}
	}
	n, _ := store.Len(ctx)
	if n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	store, clk := newTestMemoryStore(t, MemoryConfig{SweepInterval: time.Minute})
	ctx := context.Background()

	if err := store.Set(ctx, "short", entryIn(clk, "v", 30*time.Second)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "long", entryIn(clk, "v", time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The sweep fires without any Get touching the entries.
	clk.Advance(time.Minute)
	n, _ := store.Len(ctx)
	if n != 1 {
		t.Errorf("Len() = %d after sweep, want 1", n)
	}

	// The sweep re-arms itself.
	if err := store.Set(ctx, "short2", entryIn(clk, "v", 30*time.Second)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clk.Advance(time.Minute)
	n, _ = store.Len(ctx)
	if n != 1 {
		t.Errorf("Len() = %d after second sweep, want 1", n)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store, clk := newTestMemoryStore(t, DefaultMemoryConfig())
	ctx := context.Background()

	if err := store.Set(ctx, "k", entryIn(clk, "v", time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemoryStore_Close(t *testing.T) {
	clk := clock.NewManual()
	store := NewMemoryStore(DefaultMemoryConfig(), clk, testLogger())
	ctx := context.Background()

	if err := store.Set(ctx, "k", entryIn(clk, "v", time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if n := clk.Pending(); n != 0 {
		t.Errorf("Pending() = %d after Close, want 0 (sweep stopped)", n)
	}

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Get after Close = %v, want ErrStoreClosed", err)
	}
	if err := store.Set(ctx, "k", entryIn(clk, "v", time.Minute)); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Set after Close = %v, want ErrStoreClosed", err)
	}

	// Close is idempotent.
	if err := store.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestMemoryStore_DefaultConfig(t *testing.T) {
	cfg := DefaultMemoryConfig()
	if cfg.MaxEntries != DefaultMaxEntries {
		t.Errorf("MaxEntries = %d, want %d", cfg.MaxEntries, DefaultMaxEntries)
	}
	if cfg.SweepInterval != DefaultSweepInterval {
		t.Errorf("SweepInterval = %v, want %v", cfg.SweepInterval, DefaultSweepInterval)
	}
}
