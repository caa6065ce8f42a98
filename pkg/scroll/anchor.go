package scroll

import (
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// Default stabilizer parameters.
const (
	// DefaultNearBottomThreshold is the maximum distance from the
	// bottom edge, in scroll units, at which the viewport still counts
	// as pinned to the end of the list.
	DefaultNearBottomThreshold = 150.0

	// DefaultOffsetTolerance is the maximum drift between captured and
	// observed offsets that still counts as "the user did not scroll".
	DefaultOffsetTolerance = 4.0
)

// Position is a viewport measurement along the scroll axis.
type Position struct {
	Offset         float64
	ViewportHeight float64
	DocumentHeight float64
}

// StabilizerConfig controls a Stabilizer.
type StabilizerConfig struct {
	// NearBottomThreshold bounds how close to the bottom the viewport
	// must be at capture time for a restore to be considered.
	// Default: 150
	NearBottomThreshold float64

	// OffsetTolerance bounds how far the offset may drift from the
	// captured value before the movement counts as a deliberate user
	// scroll.
	// Default: 4
	OffsetTolerance float64
}

// Stabilizer pins the scroll offset across a list append. Capture is
// called when the append begins, NoteScroll relays interim scroll
// positions, and Reconcile is called once after the new items landed.
// Reconcile decides whether the pre-append offset should be restored;
// the caller applies (or ignores) the returned offset. Each captured
// anchor is consumed by exactly one Reconcile.
type Stabilizer struct {
	threshold float64
	tolerance float64
	logger    zerolog.Logger

	mu           sync.Mutex
	armed        bool
	capturedAt   float64
	nearBottom   bool
	userScrolled bool
}

// NewStabilizer creates a Stabilizer, falling back to defaults for
// unset config fields.
func NewStabilizer(cfg StabilizerConfig, logger zerolog.Logger) *Stabilizer {
	if cfg.NearBottomThreshold <= 0 {
		cfg.NearBottomThreshold = DefaultNearBottomThreshold
	}
	if cfg.OffsetTolerance <= 0 {
		cfg.OffsetTolerance = DefaultOffsetTolerance
	}
	return &Stabilizer{
		threshold: cfg.NearBottomThreshold,
		tolerance: cfg.OffsetTolerance,
		logger:    logger.With().Str("component", "scroll-anchor").Logger(),
	}
}

// Capture records the viewport position at the moment an append
// begins and arms the stabilizer. A capture while armed replaces the
// previous anchor.
func (s *Stabilizer) Capture(pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = true
	s.capturedAt = pos.Offset
	s.userScrolled = false
	distance := pos.DocumentHeight - (pos.Offset + pos.ViewportHeight)
	s.nearBottom = distance <= s.threshold
	s.logger.Debug().
		Float64("offset", pos.Offset).
		Bool("near_bottom", s.nearBottom).
		Msg("Scroll anchor captured")
}

// NoteScroll relays a scroll position observed between Capture and
// Reconcile. Movement beyond the tolerance marks the anchor as
// user-scrolled, which vetoes the restore.
func (s *Stabilizer) NoteScroll(offset float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed || s.userScrolled {
		return
	}
	if math.Abs(offset-s.capturedAt) > s.tolerance {
		s.userScrolled = true
	}
}

// Reconcile consumes the armed anchor and reports whether the captured
// offset should be restored. The restore is approved only when the
// viewport was near the bottom at capture time, the user did not
// scroll in between, and the observed offset is still within tolerance
// of the captured one. The anchor is consumed either way; without a
// prior Capture, Reconcile reports false.
func (s *Stabilizer) Reconcile(pos Position) (restoreTo float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return 0, false
	}
	s.armed = false
	drift := math.Abs(pos.Offset - s.capturedAt)
	ok = s.nearBottom && !s.userScrolled && drift <= s.tolerance
	if ok {
		restoreTo = s.capturedAt
	}
	s.logger.Debug().
		Bool("restore", ok).
		Bool("near_bottom", s.nearBottom).
		Bool("user_scrolled", s.userScrolled).
		Float64("drift", drift).
		Msg("Scroll anchor reconciled")
	return restoreTo, ok
}

// Armed reports whether a captured anchor is awaiting Reconcile.
func (s *Stabilizer) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
