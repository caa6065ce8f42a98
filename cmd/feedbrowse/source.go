package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/feedkit/feedkit/pkg/cache"
	"github.com/feedkit/feedkit/pkg/paging"
)

type feedItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

var headlines = []string{
	"Shipping faster with incremental rollouts",
	"Notes on backpressure in streaming pipelines",
	"What we learned running a 40TB cache",
	"Declarative schema migrations, revisited",
	"The case for boring queue technology",
	"Profiling allocation churn in hot loops",
	"Designing pagination that survives retries",
	"Graceful degradation under partial outages",
	"A field guide to clock skew",
	"Why our p99 lied to us",
	"Index-only scans and when they break",
	"Taming flaky integration suites",
}

var authors = []string{"amara", "jens", "priya", "tomasz", "ines", "kofi", "lena", "marco"}

// feedSource simulates a remote feed endpoint: latency with jitter,
// optional periodic failures, and a bounded item count per feed.
type feedSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	feed  string
	calls int
	cfg   FetchConfig
}

var _ paging.Source[feedItem] = (*feedSource)(nil)

func newFeedSource(cfg FetchConfig, feed string) *feedSource {
	return &feedSource{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		feed: feed,
		cfg:  cfg,
	}
}

// Feed returns the feed the source currently serves.
func (s *feedSource) Feed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed
}

// SetFeed switches the source to another feed.
func (s *feedSource) SetFeed(feed string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = feed
}

func (s *feedSource) FetchPage(ctx context.Context, page, batchSize int) (paging.Page[feedItem], error) {
	s.mu.Lock()
	s.calls++
	calls := s.calls
	feed := s.feed
	latency := s.cfg.MinLatency
	if jitter := s.cfg.MaxLatency - s.cfg.MinLatency; jitter > 0 {
		latency += time.Duration(s.rng.Int63n(int64(jitter)))
	}
	s.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return paging.Page[feedItem]{}, ctx.Err()
		}
	}

	if s.cfg.FailEvery > 0 && calls%s.cfg.FailEvery == 0 {
		return paging.Page[feedItem]{}, fmt.Errorf("feed %q temporarily unavailable", feed)
	}

	total := s.cfg.TotalItems
	start := (page - 1) * batchSize
	if start < 0 || start >= total {
		return paging.Page[feedItem]{}, nil
	}
	end := min(start+batchSize, total)
	items := make([]feedItem, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, feedItem{
			ID:     uuid.NewString(),
			Title:  fmt.Sprintf("%s (%s #%d)", headlines[i%len(headlines)], feed, i+1),
			Author: authors[i%len(authors)],
		})
	}
	return paging.Page[feedItem]{Items: items, HasMore: end < total}, nil
}

// cachedSource serves pages through the cache manager so a revisited
// feed renders instantly instead of re-fetching.
type cachedSource struct {
	src *feedSource
	mgr *cache.Manager
	ttl time.Duration
}

var _ paging.Source[feedItem] = (*cachedSource)(nil)

func (c *cachedSource) FetchPage(ctx context.Context, page, batchSize int) (paging.Page[feedItem], error) {
	key := cache.FeedKey{Feed: c.src.Feed(), Page: page, BatchSize: batchSize}

	data, err := c.mgr.GetOrFill(ctx, key.String(), c.ttl, func(ctx context.Context) ([]byte, error) {
		result, err := c.src.FetchPage(ctx, page, batchSize)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return paging.Page[feedItem]{}, err
	}

	var result paging.Page[feedItem]
	if err := json.Unmarshal(data, &result); err != nil {
		return paging.Page[feedItem]{}, fmt.Errorf("%w: %v", cache.ErrInvalidEntry, err)
	}
	return result, nil
}
