package scroll

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultMargin is the proximity margin used when TriggerConfig.Margin
// is not set.
const DefaultMargin = 300.0

// ErrNilTriggerFunc is returned by NewTrigger when no callback is
// given.
var ErrNilTriggerFunc = errors.New("scroll: trigger callback must not be nil")

// TriggerConfig controls a Trigger.
type TriggerConfig struct {
	// Margin is the proximity margin, in viewport units, at which the
	// sentinel counts as "near". The visibility service reads it via
	// Margin when registering the sentinel.
	// Default: 300
	Margin float64
}

// Trigger turns sentinel-proximity events into load-more requests. It
// is edge-triggered: the callback fires at most once per entry into
// proximity, then the trigger disengages until Rearm, normally called
// after a successful append has moved the sentinel to the new last
// item. This keeps a sentinel that stays inside the proximity zone
// (short lists, tall viewports) from requesting pages in a loop.
type Trigger struct {
	mu        sync.Mutex
	margin    float64
	armed     bool
	onTrigger func()
	logger    zerolog.Logger
}

// NewTrigger creates an armed Trigger invoking onTrigger.
func NewTrigger(cfg TriggerConfig, onTrigger func(), logger zerolog.Logger) (*Trigger, error) {
	if onTrigger == nil {
		return nil, ErrNilTriggerFunc
	}
	if cfg.Margin <= 0 {
		cfg.Margin = DefaultMargin
	}
	return &Trigger{
		margin:    cfg.Margin,
		armed:     true,
		onTrigger: onTrigger,
		logger:    logger.With().Str("component", "scroll-trigger").Logger(),
	}, nil
}

// SentinelEntered reports that the sentinel entered the proximity
// zone. While armed it fires the callback and disengages; otherwise it
// is a no-op.
func (t *Trigger) SentinelEntered() {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return
	}
	t.armed = false
	t.mu.Unlock()

	t.logger.Debug().Msg("Sentinel proximity trigger fired")
	t.onTrigger()
}

// Rearm re-engages the trigger for the next proximity entry.
func (t *Trigger) Rearm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
}

// Disarm disengages the trigger until Rearm. Used when no further
// pages exist or the list is being torn down.
func (t *Trigger) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
}

// Armed reports whether the next proximity entry will fire.
func (t *Trigger) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Margin returns the configured proximity margin.
func (t *Trigger) Margin() float64 {
	return t.margin
}
