// Package readiness tracks which items are visually in a loading state
// and enforces a minimum skeleton duration.
//
// On fast sources an item can arrive a few milliseconds after its
// skeleton placeholder renders; removing the placeholder right away
// makes it flash for a single frame. The Tracker therefore keeps an
// item in the loading set for at least a configured minimum once it is
// marked, holding it with a cancellable timer when the data arrives
// early. The hold is a deliberate perception contract, not a
// performance detail.
//
// All timing goes through the clock package, so tests drive the holds
// with a manual clock.
package readiness

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
)

// DefaultMinSkeletonDuration is the hold applied when
// Config.MinSkeletonDuration is not set.
const DefaultMinSkeletonDuration = 200 * time.Millisecond

// Config controls a Tracker.
type Config struct {
	// MinSkeletonDuration is the minimum time an item remains in the
	// loading set after MarkLoading.
	// Default: 200ms
	MinSkeletonDuration time.Duration

	// FadeOutDuration extends a deferred removal to cover the
	// skeleton's exit animation. Applies only when the data arrived
	// before MinSkeletonDuration elapsed.
	// Default: 0
	FadeOutDuration time.Duration
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		MinSkeletonDuration: DefaultMinSkeletonDuration,
	}
}

type record struct {
	startedAt time.Time
	gen       uint64
	timer     clock.Timer // pending removal, nil while data is outstanding
}

// Tracker owns the loading set. IsLoading covers both "data still
// outstanding" and "artificially held to avoid flicker"; callers never
// need to distinguish the two.
type Tracker struct {
	clk     clock.Clock
	logger  zerolog.Logger
	minHold time.Duration
	fadeOut time.Duration

	mu      sync.Mutex
	records map[string]*record
	gen     uint64
	closed  bool

	subs   []*loadingSub
	nextID uint64
}

type loadingSub struct {
	id uint64
	fn func(id string, loading bool)
}

// NewTracker creates a Tracker using clk for scheduling. A nil clk
// falls back to the system clock; zero config values fall back to
// defaults.
func NewTracker(cfg Config, clk clock.Clock, logger zerolog.Logger) *Tracker {
	if clk == nil {
		clk = clock.System()
	}
	if cfg.MinSkeletonDuration <= 0 {
		cfg.MinSkeletonDuration = DefaultMinSkeletonDuration
	}
	if cfg.FadeOutDuration < 0 {
		cfg.FadeOutDuration = 0
	}
	return &Tracker{
		clk:     clk,
		logger:  logger.With().Str("component", "readiness").Logger(),
		minHold: cfg.MinSkeletonDuration,
		fadeOut: cfg.FadeOutDuration,
		records: make(map[string]*record),
	}
}

// MarkLoading puts ids into the loading set, recording the current
// time as their load start. Re-marking an id that is already loading
// resets its start time and cancels any pending removal.
func (t *Tracker) MarkLoading(ids ...string) {
	now := t.clk.Now()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	var added []string
	for _, id := range ids {
		if r, ok := t.records[id]; ok {
			if r.timer != nil {
				r.timer.Stop()
				r.timer = nil
			}
			t.gen++
			r.gen = t.gen
			r.startedAt = now
			continue
		}
		t.gen++
		t.records[id] = &record{startedAt: now, gen: t.gen}
		added = append(added, id)
	}
	itemsLoading.Set(float64(len(t.records)))
	subs := t.subsLocked()
	t.mu.Unlock()

	for _, id := range added {
		t.fanout(subs, id, true)
	}
}

// MarkLoaded records that the data for ids has arrived. An id whose
// minimum hold has already elapsed leaves the loading set immediately;
// otherwise a cancellable removal is scheduled for the remainder of
// the hold plus the fade-out. Unknown ids and ids already scheduled
// for removal are ignored.
func (t *Tracker) MarkLoaded(ids ...string) {
	now := t.clk.Now()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	var removed []string
	for _, id := range ids {
		r, ok := t.records[id]
		if !ok || r.timer != nil {
			continue
		}
		elapsed := now.Sub(r.startedAt)
		if elapsed >= t.minHold {
			delete(t.records, id)
			removed = append(removed, id)
			skeletonHold.Observe(elapsed.Seconds())
			continue
		}
		hold := t.minHold - elapsed + t.fadeOut
		gen := r.gen
		id := id
		r.timer = t.clk.AfterFunc(hold, func() { t.expire(id, gen) })
		t.logger.Debug().
			Str("item_id", id).
			Dur("hold", hold).
			Msg("Deferring skeleton removal")
	}
	itemsLoading.Set(float64(len(t.records)))
	subs := t.subsLocked()
	t.mu.Unlock()

	for _, id := range removed {
		t.fanout(subs, id, false)
	}
}

// expire removes id once its hold elapses. A generation mismatch means
// the id was re-marked after this removal was scheduled; the callback
// is then stale and does nothing.
func (t *Tracker) expire(id string, gen uint64) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	r, ok := t.records[id]
	if !ok || r.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.records, id)
	skeletonHold.Observe(t.clk.Since(r.startedAt).Seconds())
	itemsLoading.Set(float64(len(t.records)))
	subs := t.subsLocked()
	t.mu.Unlock()

	t.fanout(subs, id, false)
}

// IsLoading reports whether id is in the loading set.
func (t *Tracker) IsLoading(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.records[id]
	return ok
}

// Count returns the size of the loading set.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Subscribe registers fn to be called when an id's visible loading
// state changes. The returned function unsubscribes.
func (t *Tracker) Subscribe(fn func(id string, loading bool)) func() {
	t.mu.Lock()
	t.nextID++
	sub := &loadingSub{id: t.nextID, fn: fn}
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s.id == sub.id {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Reset empties the loading set and cancels every pending removal, so
// no stale callback can resurrect an id later.
func (t *Tracker) Reset() {
	t.mu.Lock()
	removed := t.clearLocked()
	subs := t.subsLocked()
	t.mu.Unlock()

	for _, id := range removed {
		t.fanout(subs, id, false)
	}
}

// Close resets the tracker and rejects all further marks. Safe to call
// more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	removed := t.clearLocked()
	subs := t.subsLocked()
	t.mu.Unlock()

	for _, id := range removed {
		t.fanout(subs, id, false)
	}
}

func (t *Tracker) clearLocked() []string {
	removed := make([]string, 0, len(t.records))
	for id, r := range t.records {
		if r.timer != nil {
			r.timer.Stop()
		}
		removed = append(removed, id)
	}
	t.records = make(map[string]*record)
	itemsLoading.Set(0)
	return removed
}

func (t *Tracker) subsLocked() []*loadingSub {
	subs := make([]*loadingSub, len(t.subs))
	copy(subs, t.subs)
	return subs
}

func (t *Tracker) fanout(subs []*loadingSub, id string, loading bool) {
	for _, sub := range subs {
		sub.fn(id, loading)
	}
}
