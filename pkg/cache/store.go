package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrStoreClosed indicates the store has been closed
	ErrStoreClosed = errors.New("cache store closed")
)

// Store is a cache backend. Implementations must be safe for
// concurrent use.
type Store interface {
	// Name identifies the backend ("memory", "redis") for metrics and
	// logs.
	Name() string

	// Get retrieves an entry. Returns ErrCacheMiss if the key does not
	// exist or the entry has expired.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores an entry until it expires. Entries that are already
	// expired are silently dropped.
	Set(ctx context.Context, key string, entry *Entry) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Len reports how many entries the backend currently holds.
	Len(ctx context.Context) (int64, error)

	// Close releases backend resources.
	Close() error
}
