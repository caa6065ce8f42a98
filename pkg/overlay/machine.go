// Package overlay implements the full-screen navigation loading
// overlay lifecycle.
//
// The overlay must never flash (a minimum visible time once shown),
// never hang (a hard maximum, even if content-ready is lost), and
// never fight a newer navigation (every scheduled callback carries the
// cycle id it was created under and no-ops when a later cycle has
// taken over). Phases move Idle -> Showing -> TimedOut or Hiding ->
// Idle; a route change in any visible phase restarts the cycle with a
// fresh id.
package overlay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/clock"
)

// Phase is the overlay's lifecycle phase.
type Phase string

const (
	// PhaseIdle means the overlay is unmounted.
	PhaseIdle Phase = "idle"
	// PhaseShowing means the overlay is visible and the wait is live.
	PhaseShowing Phase = "showing"
	// PhaseTimedOut means the hard timeout fired before content was
	// ready; the overlay is on its way out and further wants are
	// suppressed until the wanted signal drops once.
	PhaseTimedOut Phase = "timed_out"
	// PhaseHiding means the fade-out is playing.
	PhaseHiding Phase = "hiding"
)

// Defaults applied by NewMachine for zero Config fields.
const (
	DefaultMinVisible = 1500 * time.Millisecond
	DefaultMaxVisible = 10 * time.Second
	DefaultFadeOut    = 200 * time.Millisecond
)

// Config controls a Machine.
type Config struct {
	// MinVisible is the minimum time the overlay stays visible once
	// shown; an early content-ready defers the hide to this bound.
	// Default: 1.5s
	MinVisible time.Duration

	// MaxVisible is the hard timeout: the overlay begins hiding after
	// this long even if content-ready never arrives.
	// Default: 10s
	MaxVisible time.Duration

	// FadeOut is the exit animation length; the machine stays in
	// PhaseHiding for this long before returning to PhaseIdle.
	// Default: 200ms
	FadeOut time.Duration
}

// DefaultConfig returns the default overlay configuration.
func DefaultConfig() Config {
	return Config{
		MinVisible: DefaultMinVisible,
		MaxVisible: DefaultMaxVisible,
		FadeOut:    DefaultFadeOut,
	}
}

// Snapshot is a point-in-time view of the machine, delivered to
// subscribers on every phase change.
type Snapshot struct {
	Phase   Phase
	CycleID uint64    // current show cycle, 0 before the first show
	ShownAt time.Time // zero while idle
	Wanted  bool      // last wanted signal seen
}

// Visible reports whether the overlay occupies the screen in any form.
func (s Snapshot) Visible() bool {
	return s.Phase != PhaseIdle
}

// Machine owns the overlay phase. Inputs arrive via SetWanted and
// RouteChanged (or a bus attachment, see Attach); presentation layers
// observe via Subscribe or Snapshot and never mutate the phase
// directly.
type Machine struct {
	clk        clock.Clock
	logger     zerolog.Logger
	minVisible time.Duration
	maxVisible time.Duration
	fadeOut    time.Duration

	mu         sync.Mutex
	phase      Phase
	cycleID    uint64
	shownAt    time.Time
	wanted     bool
	suppressed bool
	closed     bool

	timeoutTimer clock.Timer
	hideTimer    clock.Timer
	fadeTimer    clock.Timer

	subs   []*phaseSub
	nextID uint64
}

type phaseSub struct {
	id uint64
	fn func(Snapshot)
}

// NewMachine creates a Machine scheduling on clk. A nil clk falls back
// to the system clock; zero config values fall back to defaults.
func NewMachine(cfg Config, clk clock.Clock, logger zerolog.Logger) *Machine {
	if clk == nil {
		clk = clock.System()
	}
	if cfg.MinVisible <= 0 {
		cfg.MinVisible = DefaultMinVisible
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = DefaultMaxVisible
	}
	if cfg.FadeOut <= 0 {
		cfg.FadeOut = DefaultFadeOut
	}
	return &Machine{
		clk:        clk,
		logger:     logger.With().Str("component", "overlay").Logger(),
		minVisible: cfg.MinVisible,
		maxVisible: cfg.MaxVisible,
		fadeOut:    cfg.FadeOut,
		phase:      PhaseIdle,
	}
}

// Snapshot returns the current machine state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to be called with a snapshot after every
// phase change. The returned function unsubscribes.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	m.nextID++
	sub := &phaseSub{id: m.nextID, fn: fn}
	m.subs = append(m.subs, sub)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == sub.id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// SetWanted feeds the boolean wait signal. A rising edge shows the
// overlay (unless suppressed after a timeout); a falling edge hides
// it, deferred so the overlay never flashes below MinVisible. Falling
// also clears timeout suppression.
func (m *Machine) SetWanted(wanted bool) {
	now := m.clk.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wanted = wanted
	var snaps []Snapshot

	if wanted {
		if m.suppressed {
			m.mu.Unlock()
			m.logger.Debug().Msg("Overlay want suppressed after timeout")
			return
		}
		switch m.phase {
		case PhaseShowing:
			// Already up; cancel a pending deferred hide, the wait
			// is live again.
			if m.hideTimer != nil {
				m.hideTimer.Stop()
				m.hideTimer = nil
			}
		default:
			snaps = append(snaps, m.showLocked(now))
		}
	} else {
		m.suppressed = false
		if m.phase == PhaseShowing && m.hideTimer == nil {
			elapsed := now.Sub(m.shownAt)
			if elapsed >= m.minVisible {
				snaps = append(snaps, m.beginHideLocked(now))
			} else {
				cycle := m.cycleID
				m.hideTimer = m.clk.AfterFunc(m.minVisible-elapsed, func() {
					m.hideDue(cycle)
				})
			}
		}
	}
	m.mu.Unlock()
	m.emit(snaps)
}

// RouteChanged feeds a navigation event. It opens a fresh wait: any
// visible cycle is restarted with a new cycle id and prior timers are
// superseded.
func (m *Machine) RouteChanged(routeKey string) {
	now := m.clk.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wanted = true
	m.suppressed = false
	snap := m.showLocked(now)
	m.mu.Unlock()

	m.logger.Debug().
		Str("route", routeKey).
		Uint64("cycle_id", snap.CycleID).
		Msg("Route change restarted overlay cycle")
	m.emit([]Snapshot{snap})
}

// Close cancels all scheduled callbacks and parks the machine in
// PhaseIdle. Further inputs are ignored. Safe to call more than once.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTimersLocked()
	var snaps []Snapshot
	if m.phase != PhaseIdle {
		m.phase = PhaseIdle
		m.shownAt = time.Time{}
		snaps = append(snaps, m.snapshotLocked())
	}
	m.mu.Unlock()
	m.emit(snaps)
}

// showLocked starts a new cycle: fresh id, fresh shownAt, hard timeout
// armed. Callers must hold m.mu.
func (m *Machine) showLocked(now time.Time) Snapshot {
	m.stopTimersLocked()
	m.cycleID++
	m.shownAt = now
	m.phase = PhaseShowing
	m.suppressed = false
	cycle := m.cycleID
	m.timeoutTimer = m.clk.AfterFunc(m.maxVisible, func() {
		m.timeoutDue(cycle)
	})
	cyclesStarted.Inc()
	m.logger.Debug().Uint64("cycle_id", cycle).Msg("Overlay shown")
	return m.snapshotLocked()
}

// timeoutDue runs when a cycle's hard timeout elapses. Stale cycles
// no-op; a live one moves to PhaseTimedOut, suppresses further wants
// for this wait, and schedules the hide at the later of now and
// shownAt+MinVisible.
func (m *Machine) timeoutDue(cycle uint64) {
	now := m.clk.Now()

	m.mu.Lock()
	if m.closed || cycle != m.cycleID || m.phase != PhaseShowing {
		m.mu.Unlock()
		return
	}
	m.phase = PhaseTimedOut
	m.suppressed = true
	timeouts.Inc()
	snaps := []Snapshot{m.snapshotLocked()}

	elapsed := now.Sub(m.shownAt)
	if elapsed >= m.minVisible {
		snaps = append(snaps, m.beginHideLocked(now))
	} else {
		m.hideTimer = m.clk.AfterFunc(m.minVisible-elapsed, func() {
			m.hideDue(cycle)
		})
	}
	m.mu.Unlock()

	m.logger.Warn().
		Uint64("cycle_id", cycle).
		Dur("visible", elapsed).
		Msg("Overlay hard timeout reached")
	m.emit(snaps)
}

// hideDue runs when a deferred hide comes due. It no-ops for stale
// cycles, and for a live Showing cycle whose want was re-asserted in
// the meantime.
func (m *Machine) hideDue(cycle uint64) {
	now := m.clk.Now()

	m.mu.Lock()
	if m.closed || cycle != m.cycleID {
		m.mu.Unlock()
		return
	}
	if m.phase != PhaseShowing && m.phase != PhaseTimedOut {
		m.mu.Unlock()
		return
	}
	if m.phase == PhaseShowing && m.wanted {
		m.mu.Unlock()
		return
	}
	snap := m.beginHideLocked(now)
	m.mu.Unlock()
	m.emit([]Snapshot{snap})
}

// beginHideLocked moves to PhaseHiding and schedules the return to
// idle after the fade. Callers must hold m.mu.
func (m *Machine) beginHideLocked(now time.Time) Snapshot {
	if m.timeoutTimer != nil {
		m.timeoutTimer.Stop()
		m.timeoutTimer = nil
	}
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
	m.phase = PhaseHiding
	visibleSeconds.Observe(now.Sub(m.shownAt).Seconds())
	cycle := m.cycleID
	m.fadeTimer = m.clk.AfterFunc(m.fadeOut, func() {
		m.fadeDone(cycle)
	})
	m.logger.Debug().
		Uint64("cycle_id", cycle).
		Dur("visible", now.Sub(m.shownAt)).
		Msg("Overlay hiding")
	return m.snapshotLocked()
}

// fadeDone completes the hide: the cycle ends and the overlay
// unmounts.
func (m *Machine) fadeDone(cycle uint64) {
	m.mu.Lock()
	if m.closed || cycle != m.cycleID || m.phase != PhaseHiding {
		m.mu.Unlock()
		return
	}
	m.phase = PhaseIdle
	m.shownAt = time.Time{}
	m.fadeTimer = nil
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug().Uint64("cycle_id", cycle).Msg("Overlay hidden")
	m.emit([]Snapshot{snap})
}

func (m *Machine) stopTimersLocked() {
	for _, t := range []*clock.Timer{&m.timeoutTimer, &m.hideTimer, &m.fadeTimer} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:   m.phase,
		CycleID: m.cycleID,
		ShownAt: m.shownAt,
		Wanted:  m.wanted,
	}
}

func (m *Machine) emit(snaps []Snapshot) {
	if len(snaps) == 0 {
		return
	}
	m.mu.Lock()
	subs := make([]*phaseSub, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, snap := range snaps {
		for _, sub := range subs {
			sub.fn(snap)
		}
	}
}
