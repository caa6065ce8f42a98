package paging

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is the page size used when Config.BatchSize is not
// set.
const DefaultBatchSize = 20

// Config controls a Coordinator.
type Config struct {
	// BatchSize is the number of items requested per page.
	// Default: 20
	BatchSize int
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
	}
}

// State is a point-in-time snapshot of a coordinator's paged-list
// state. Items is a copy; holders may keep it without retaining a
// reference into the coordinator.
type State[T any] struct {
	Items       []T
	CurrentPage int  // last page fetched, 0 before the first fetch
	Loading     bool // first page fetch in flight
	LoadingMore bool // follow-up page fetch in flight
	HasMore     bool
	Err         error // last fetch failure, nil after success or Reset
}

// Coordinator owns the state of one progressively loaded list and
// fetches it page by page from a Source. All methods are safe for
// concurrent use; the list state is mutated only through them.
type Coordinator[T any] struct {
	source    Source[T]
	batchSize int
	logger    zerolog.Logger

	mu          sync.Mutex
	items       []T
	currentPage int
	loading     bool
	loadingMore bool
	hasMore     bool
	err         error

	inFlight   bool
	requestSeq uint64 // bumped on dispatch and on supersession

	subs   []*stateSub[T]
	nextID uint64
}

type stateSub[T any] struct {
	id uint64
	fn func(State[T])
}

// NewCoordinator creates a Coordinator reading from source. Zero
// config values fall back to defaults.
func NewCoordinator[T any](source Source[T], cfg Config, logger zerolog.Logger) (*Coordinator[T], error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Coordinator[T]{
		source:    source,
		batchSize: cfg.BatchSize,
		logger:    logger.With().Str("component", "paging").Logger(),
		hasMore:   true,
	}, nil
}

// BatchSize returns the configured page size.
func (c *Coordinator[T]) BatchSize() int {
	return c.batchSize
}

// State returns a snapshot of the current list state.
func (c *Coordinator[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe registers fn to be called with a state snapshot after
// every state change. The returned function unsubscribes.
func (c *Coordinator[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	c.nextID++
	sub := &stateSub[T]{id: c.nextID, fn: fn}
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == sub.id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// LoadMore fetches the next page. It is a no-op when a fetch is
// already in flight or the source has reported no further pages. The
// fetch runs on the calling goroutine; while it is pending the state
// shows Loading (empty list) or LoadingMore. On failure the error is
// recorded and returned, and items and HasMore stay untouched; the
// caller may invoke LoadMore again to retry.
func (c *Coordinator[T]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight || !c.hasMore {
		inFlight, hasMore := c.inFlight, c.hasMore
		c.mu.Unlock()
		c.logger.Debug().
			Bool("in_flight", inFlight).
			Bool("has_more", hasMore).
			Msg("LoadMore skipped")
		return nil
	}
	c.inFlight = true
	c.requestSeq++
	id := c.requestSeq
	page := c.currentPage + 1
	if len(c.items) == 0 {
		c.loading = true
	} else {
		c.loadingMore = true
	}
	snap := c.stateLocked()
	c.mu.Unlock()
	c.notify(snap)

	c.logger.Debug().
		Int("page", page).
		Int("batch_size", c.batchSize).
		Uint64("request_id", id).
		Msg("Fetching page")

	start := time.Now()
	result, err := c.source.FetchPage(ctx, page, c.batchSize)
	fetchDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	if id != c.requestSeq {
		c.mu.Unlock()
		staleResults.Inc()
		c.logger.Debug().
			Int("page", page).
			Uint64("request_id", id).
			Msg("Discarding stale page result")
		return nil
	}
	c.inFlight = false
	c.loading = false
	c.loadingMore = false

	if err != nil {
		ferr := &FetchError{Page: page, BatchSize: c.batchSize, Err: err}
		c.err = ferr
		snap = c.stateLocked()
		c.mu.Unlock()

		fetchesTotal.WithLabelValues("error").Inc()
		c.logger.Warn().
			Err(err).
			Int("page", page).
			Msg("Page fetch failed")
		c.notify(snap)
		return ferr
	}

	c.items = append(c.items, result.Items...)
	c.currentPage = page
	c.hasMore = result.HasMore
	c.err = nil
	snap = c.stateLocked()
	c.mu.Unlock()

	fetchesTotal.WithLabelValues("success").Inc()
	itemsLoaded.Add(float64(len(result.Items)))
	c.logger.Debug().
		Int("page", page).
		Int("items", len(result.Items)).
		Int("total_items", len(snap.Items)).
		Bool("has_more", result.HasMore).
		Msg("Page loaded")
	c.notify(snap)
	return nil
}

// Refresh discards the current list and fetches the first page again.
// Any fetch still in flight is superseded; its result will be
// discarded when it arrives.
func (c *Coordinator[T]) Refresh(ctx context.Context) error {
	c.Reset()
	return c.LoadMore(ctx)
}

// Reset clears the list back to its initial state: no items, page 0,
// more pages assumed, no error. An in-flight fetch is not aborted;
// bumping the request sequence makes its eventual result stale.
func (c *Coordinator[T]) Reset() {
	c.mu.Lock()
	c.items = nil
	c.currentPage = 0
	c.loading = false
	c.loadingMore = false
	c.hasMore = true
	c.err = nil
	c.inFlight = false
	c.requestSeq++
	snap := c.stateLocked()
	c.mu.Unlock()

	c.logger.Debug().Msg("List state reset")
	c.notify(snap)
}

// SetItems replaces the list contents and current page directly,
// bypassing the source. Used to restore a previously cached list
// without re-fetching. HasMore and the error state are untouched; pair
// with SetHasMore when the restored list was complete.
func (c *Coordinator[T]) SetItems(items []T, page int) {
	c.mu.Lock()
	c.items = append([]T(nil), items...)
	c.currentPage = page
	snap := c.stateLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// AppendItems appends items directly, bypassing the source. HasMore,
// the current page and the error state are untouched.
func (c *Coordinator[T]) AppendItems(items []T) {
	if len(items) == 0 {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, items...)
	snap := c.stateLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetHasMore overrides the continuation flag. Used together with
// SetItems when restoring a list whose end was already known.
func (c *Coordinator[T]) SetHasMore(hasMore bool) {
	c.mu.Lock()
	c.hasMore = hasMore
	snap := c.stateLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// stateLocked builds a snapshot. Callers must hold c.mu.
func (c *Coordinator[T]) stateLocked() State[T] {
	return State[T]{
		Items:       append([]T(nil), c.items...),
		CurrentPage: c.currentPage,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		HasMore:     c.hasMore,
		Err:         c.err,
	}
}

func (c *Coordinator[T]) notify(snap State[T]) {
	c.mu.Lock()
	subs := make([]*stateSub[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}
