package cache

import (
	"fmt"
	"sort"
	"strings"
)

// FeedKey identifies one cached feed page.
type FeedKey struct {
	// Feed is the feed identifier (e.g., "home", "search")
	Feed string

	// Page is the 1-based page number
	Page int

	// BatchSize is the page size the feed was fetched with
	BatchSize int

	// Filters are optional feed filters (e.g., {"sort": "new"})
	Filters map[string]string
}

// String generates a deterministic cache key string.
// Format: feedkit:feed:<name>:page=<n>:size=<n>:filter1=val1
//
// Example:
//
//	feedkit:feed:home:page=3:size=20:sort=new
func (k FeedKey) String() string {
	parts := []string{"feedkit", "feed"}

	feed := strings.TrimSpace(k.Feed)
	if feed != "" {
		parts = append(parts, feed)
	}

	parts = append(parts, fmt.Sprintf("page=%d", k.Page))
	parts = append(parts, fmt.Sprintf("size=%d", k.BatchSize))

	// Add filters (sorted for determinism)
	if len(k.Filters) > 0 {
		filterKeys := make([]string, 0, len(k.Filters))
		for key := range k.Filters {
			filterKeys = append(filterKeys, key)
		}
		sort.Strings(filterKeys)

		for _, key := range filterKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Filters[key]))
		}
	}

	return strings.Join(parts, ":")
}

// RouteKey generates the cache key for metadata attached to a route.
//
// Example:
//
//	feedkit:route:feeds/home
func RouteKey(route string) string {
	return "feedkit:route:" + strings.Trim(route, "/")
}
