package cache

import "time"

// Entry represents one cached value, typically a serialized feed page
// or route metadata blob.
type Entry struct {
	// Value is the cached payload
	Value []byte `json:"value"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the entry has expired at the given time.
func (e *Entry) IsExpired(now time.Time) bool {
	return now.After(e.Expires)
}

// TTL returns the time until expiration, measured from now.
// Returns 0 if already expired.
func (e *Entry) TTL(now time.Time) time.Duration {
	ttl := e.Expires.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
