package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/event"
	"github.com/feedkit/feedkit/pkg/overlay"
	"github.com/feedkit/feedkit/pkg/paging"
	"github.com/feedkit/feedkit/pkg/readiness"
	"github.com/feedkit/feedkit/pkg/scroll"
)

// routes are the feeds the demo cycles through with the "n" key.
var routes = []string{"home", "popular", "saved"}

// appDeps carries the wired feedkit components into the model.
type appDeps struct {
	cfg         *Config
	logger      zerolog.Logger
	bus         *event.Bus
	source      *feedSource
	coordinator *paging.Coordinator[feedItem]
	tracker     *readiness.Tracker
	machine     *overlay.Machine
	trigger     *scroll.Trigger
	estimator   *scroll.Estimator
	stabilizer  *scroll.Stabilizer
	loadReq     chan struct{}
	backend     string
}

// model is the main Bubble Tea model for feedbrowse.
type model struct {
	cfg    *Config
	logger zerolog.Logger

	bus         *event.Bus
	source      *feedSource
	coordinator *paging.Coordinator[feedItem]
	tracker     *readiness.Tracker
	machine     *overlay.Machine
	trigger     *scroll.Trigger
	estimator   *scroll.Estimator
	stabilizer  *scroll.Stabilizer

	backend string

	// Component subscriptions push change signals here; loadReq is fed
	// by the scroll trigger callback.
	activity chan struct{}
	loadReq  chan struct{}

	// Snapshots read from the components
	feed paging.State[feedItem]
	hud  overlay.Snapshot

	// UI state
	routeIdx     int
	cursor       int
	width        int
	height       int
	ready        bool
	spinnerFrame int
	skeletons    []string
}

// newModel assembles the model and subscribes it to the components.
func newModel(deps appDeps) model {
	activity := make(chan struct{}, 1)
	notify := func() {
		select {
		case activity <- struct{}{}:
		default:
		}
	}
	deps.coordinator.Subscribe(func(paging.State[feedItem]) { notify() })
	deps.tracker.Subscribe(func(string, bool) { notify() })
	deps.machine.Subscribe(func(overlay.Snapshot) { notify() })

	return model{
		cfg:         deps.cfg,
		logger:      deps.logger.With().Str("component", "tui").Logger(),
		bus:         deps.bus,
		source:      deps.source,
		coordinator: deps.coordinator,
		tracker:     deps.tracker,
		machine:     deps.machine,
		trigger:     deps.trigger,
		estimator:   deps.estimator,
		stabilizer:  deps.stabilizer,
		backend:     deps.backend,
		activity:    activity,
		loadReq:     deps.loadReq,
		feed:        deps.coordinator.State(),
		hud:         deps.machine.Snapshot(),
	}
}

func (m model) route() string {
	return routes[m.routeIdx]
}

// Init starts the spinner, the activity pump and the first route load.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		enterRouteCmd(m.bus, m.coordinator, m.route()),
		tickCmd(),
		waitActivityCmd(m.activity),
	)
}

// Update handles all messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.estimator.SetViewport(float64(m.listHeight()))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.spinnerFrame++
		return m, tickCmd()

	case activityMsg:
		m.feed = m.coordinator.State()
		m.hud = m.machine.Snapshot()
		m.pruneSkeletons()
		m.clampCursor()
		m.estimator.SetItemCount(len(m.feed.Items))
		return m, waitActivityCmd(m.activity)

	case pageLoadedMsg:
		m.feed = msg.state
		m.tracker.MarkLoaded(m.skeletons...)
		m.pruneSkeletons()
		m.trigger.Rearm()
		if restoreTo, ok := m.stabilizer.Reconcile(m.position()); ok {
			m.cursor = int(restoreTo)
		}
		m.clampCursor()
		m.estimator.SetItemCount(len(m.feed.Items))
		return m, nil

	case feedSwitchedMsg:
		m.feed = msg.state
		m.cursor = 0
		m.trigger.Rearm()
		m.estimator.SetItemCount(len(m.feed.Items))
		m.estimator.NoteScroll(0)
		if msg.state.Err == nil {
			_ = m.bus.Publish(context.Background(), event.ContentReady("feedbrowse", msg.route))
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "down", "j":
		m.cursor++
		m.clampCursor()
		m.estimator.NoteScroll(float64(m.windowTop()))
		return m, m.maybeLoadMore()

	case "up", "k":
		m.cursor--
		m.clampCursor()
		m.estimator.NoteScroll(float64(m.windowTop()))
		return m, nil

	case "g":
		m.cursor = 0
		m.estimator.NoteScroll(0)
		return m, nil

	case "G":
		m.cursor = len(m.feed.Items) - 1
		m.clampCursor()
		m.estimator.NoteScroll(float64(m.windowTop()))
		return m, m.maybeLoadMore()

	case "r":
		// Manual refresh of the current route; no navigation, so the
		// overlay stays out of it.
		m.tracker.Reset()
		m.skeletons = nil
		m.cursor = 0
		return m, switchFeedCmd(m.coordinator, m.route())

	case "n", "tab":
		m.routeIdx = (m.routeIdx + 1) % len(routes)
		route := m.route()
		m.source.SetFeed(route)
		m.tracker.Reset()
		m.skeletons = nil
		m.cursor = 0
		m.logger.Debug().Str("route", route).Msg("Switching route")
		return m, enterRouteCmd(m.bus, m.coordinator, route)
	}

	return m, nil
}

// maybeLoadMore fires the proximity trigger when the cursor enters the
// zone near the end of the list, and starts a fetch if it fired.
func (m *model) maybeLoadMore() tea.Cmd {
	state := m.feed
	if !state.HasMore || state.Loading || state.LoadingMore {
		return nil
	}
	zone := len(state.Items) - int(m.trigger.Margin())
	if zone < 0 {
		zone = 0
	}
	if m.cursor >= zone {
		m.trigger.SentinelEntered()
	}

	select {
	case <-m.loadReq:
		return m.beginLoadMore()
	default:
		return nil
	}
}

// beginLoadMore puts up skeleton rows for the incoming page, captures
// the scroll anchor and kicks off the fetch.
func (m *model) beginLoadMore() tea.Cmd {
	page := m.feed.CurrentPage + 1
	ids := make([]string, m.coordinator.BatchSize())
	for i := range ids {
		ids[i] = fmt.Sprintf("pending-%d-%d", page, i)
	}
	m.tracker.MarkLoading(ids...)
	m.skeletons = append(m.skeletons, ids...)
	m.stabilizer.Capture(m.position())
	return loadMoreCmd(m.coordinator)
}

// pruneSkeletons drops placeholder ids the tracker has released.
func (m *model) pruneSkeletons() {
	kept := m.skeletons[:0]
	for _, id := range m.skeletons {
		if m.tracker.IsLoading(id) {
			kept = append(kept, id)
		}
	}
	m.skeletons = kept
}

func (m *model) clampCursor() {
	if last := len(m.feed.Items) - 1; m.cursor > last {
		m.cursor = last
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) position() scroll.Position {
	return scroll.Position{
		Offset:         float64(m.cursor),
		ViewportHeight: float64(m.listHeight()),
		DocumentHeight: float64(len(m.feed.Items)),
	}
}

func (m model) listHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// windowTop returns the first visible row index, keeping the cursor
// centered where possible.
func (m model) windowTop() int {
	h := m.listHeight()
	total := len(m.feed.Items) + len(m.skeletons)
	top := m.cursor - h/2
	if top > total-h {
		top = total - h
	}
	if top < 0 {
		top = 0
	}
	return top
}
