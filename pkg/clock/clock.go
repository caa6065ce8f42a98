// Package clock abstracts the time source used by the loading
// orchestration components so that scheduled work (skeleton holds,
// overlay timeouts, debounce windows) can be driven deterministically
// in tests. Production code uses System; tests use Manual.
package clock

import "time"

// Clock provides the current time and one-shot callback scheduling.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration

	// AfterFunc schedules fn to run once after d has elapsed and
	// returns a Timer that can cancel the call.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a handle to a callback scheduled via AfterFunc.
type Timer interface {
	// Stop cancels the pending callback. It reports whether the call
	// was stopped before it ran; it returns false if the callback
	// already fired or the timer was already stopped.
	Stop() bool
}

// System returns a Clock backed by the real time package.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

var _ Clock = systemClock{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool {
	return st.t.Stop()
}
