package scroll

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
)

// DefaultDebounce is the scroll recompute debounce used when
// EstimatorConfig.Debounce is not set.
const DefaultDebounce = 100 * time.Millisecond

// ErrInvalidExtent is returned by NewEstimator for a non-positive item
// extent or viewport size.
var ErrInvalidExtent = errors.New("scroll: item extent and viewport size must be positive")

// Range is a half-open index interval [Start, End) of items estimated
// to be visible.
type Range struct {
	Start int
	End   int
}

// Contains reports whether index i falls inside the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// EstimatorConfig controls an Estimator.
type EstimatorConfig struct {
	// ItemExtent is the estimated extent of one item along the scroll
	// axis. Required.
	ItemExtent float64

	// ViewportSize is the visible window extent along the scroll axis.
	// Required.
	ViewportSize float64

	// Overscan pads the computed range by this many indices on both
	// ends for preloading.
	// Default: 0
	Overscan int

	// Debounce is how long scroll input must settle before the range
	// is recomputed.
	// Default: 100ms
	Debounce time.Duration
}

// Estimator maintains a coarse visible index range from scroll offset,
// estimated item extent and viewport size. Scroll input is debounced
// on the trailing edge; item-count and viewport changes recompute
// immediately. The range is advisory, meant for preload heuristics
// rather than correctness.
type Estimator struct {
	itemExtent float64
	viewport   float64
	overscan   int
	debounce   time.Duration
	clk        clock.Clock
	onChange   func(Range)
	logger     zerolog.Logger

	mu        sync.Mutex
	offset    float64
	itemCount int
	current   Range
	timer     clock.Timer
	gen       uint64
	closed    bool
}

// NewEstimator creates an Estimator. onChange may be nil; the range is
// then available from Current only. A nil clk falls back to the system
// clock.
func NewEstimator(cfg EstimatorConfig, clk clock.Clock, onChange func(Range), logger zerolog.Logger) (*Estimator, error) {
	if cfg.ItemExtent <= 0 || cfg.ViewportSize <= 0 {
		return nil, ErrInvalidExtent
	}
	if cfg.Overscan < 0 {
		cfg.Overscan = 0
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Estimator{
		itemExtent: cfg.ItemExtent,
		viewport:   cfg.ViewportSize,
		overscan:   cfg.Overscan,
		debounce:   cfg.Debounce,
		clk:        clk,
		onChange:   onChange,
		logger:     logger.With().Str("component", "scroll-range").Logger(),
	}, nil
}

// NoteScroll feeds a scroll position. The recompute is deferred until
// input has settled for the debounce window; every call restarts the
// window.
func (e *Estimator) NoteScroll(offset float64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.offset = offset
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = e.clk.AfterFunc(e.debounce, func() { e.settle(gen) })
	e.mu.Unlock()
}

// SetItemCount sets how many items the list holds and recomputes
// immediately, clamping the range to the new count.
func (e *Estimator) SetItemCount(n int) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if n < 0 {
		n = 0
	}
	e.itemCount = n
	changed, r := e.recomputeLocked()
	e.mu.Unlock()
	e.announce(changed, r)
}

// SetViewport updates the viewport extent (e.g. after a resize) and
// recomputes immediately. Non-positive sizes are ignored.
func (e *Estimator) SetViewport(size float64) {
	e.mu.Lock()
	if e.closed || size <= 0 {
		e.mu.Unlock()
		return
	}
	e.viewport = size
	changed, r := e.recomputeLocked()
	e.mu.Unlock()
	e.announce(changed, r)
}

// Current returns the last computed range.
func (e *Estimator) Current() Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Close cancels any pending recompute.
func (e *Estimator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// settle runs when the debounce window elapses. A generation mismatch
// means newer scroll input restarted the window; the callback is then
// stale and does nothing.
func (e *Estimator) settle(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	changed, r := e.recomputeLocked()
	e.mu.Unlock()
	e.announce(changed, r)
}

func (e *Estimator) recomputeLocked() (bool, Range) {
	start := int(math.Floor(e.offset/e.itemExtent)) - e.overscan
	end := int(math.Ceil((e.offset+e.viewport)/e.itemExtent)) + e.overscan
	if start < 0 {
		start = 0
	}
	if end > e.itemCount {
		end = e.itemCount
	}
	if start > end {
		start = end
	}
	r := Range{Start: start, End: end}
	if r == e.current {
		return false, r
	}
	e.current = r
	e.logger.Debug().
		Int("start", r.Start).
		Int("end", r.End).
		Float64("offset", e.offset).
		Msg("Visible range updated")
	return true, r
}

func (e *Estimator) announce(changed bool, r Range) {
	if changed && e.onChange != nil {
		e.onChange(r)
	}
}
