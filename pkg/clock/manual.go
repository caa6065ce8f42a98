package clock

import (
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when the test calls Advance
// or Set. Scheduled callbacks fire synchronously on the advancing
// goroutine, in deadline order, with Now reporting each callback's own
// deadline while it runs. Callbacks may schedule further timers; those
// fire too if they fall within the advanced window.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

var _ Clock = (*Manual)(nil)

// NewManual creates a Manual clock. The start time defaults to a fixed
// date so tests get stable timestamps without seeding one.
func NewManual(start ...time.Time) *Manual {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if len(start) > 0 {
		now = start[0]
	}
	return &Manual{now: now}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Since returns the time elapsed since t according to the clock.
func (m *Manual) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// AfterFunc schedules fn to run once the clock has been advanced by at
// least d. Non-positive durations fire on the next Advance call,
// including Advance(0).
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{
		clock:    m,
		deadline: m.now.Add(d),
		seq:      m.seq,
		fn:       fn,
	}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the clock forward by d, firing every due callback in
// deadline order before returning.
func (m *Manual) Advance(d time.Duration) {
	m.Set(m.Now().Add(d))
}

// Set jumps the clock to t, firing every callback whose deadline is at
// or before t. A t earlier than the current time never rewinds the
// clock; nothing un-fires.
func (m *Manual) Set(t time.Time) {
	for {
		m.mu.Lock()
		next := m.earliestLocked(t)
		if next == nil {
			if t.After(m.now) {
				m.now = t
			}
			m.mu.Unlock()
			return
		}
		m.removeLocked(next)
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		next.fired = true
		m.mu.Unlock()

		// Run outside the lock so the callback can use the clock.
		next.fn()
	}
}

// Pending reports how many scheduled callbacks have not yet fired or
// been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// earliestLocked returns the pending timer with the smallest deadline
// not after limit, breaking ties by scheduling order.
func (m *Manual) earliestLocked(limit time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.pending {
		if t.deadline.After(limit) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) removeLocked(target *manualTimer) {
	for i, t := range m.pending {
		if t == target {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

type manualTimer struct {
	clock    *Manual
	deadline time.Time
	seq      uint64
	fn       func()
	fired    bool
	stopped  bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	t.clock.removeLocked(t)
	return true
}
