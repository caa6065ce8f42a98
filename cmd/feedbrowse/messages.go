package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/feedkit/feedkit/pkg/event"
	"github.com/feedkit/feedkit/pkg/paging"
)

// Message types for the TUI

// tickMsg drives the spinner animation.
type tickMsg struct{}

// activityMsg signals that a subscribed feedkit component changed
// state outside the message loop.
type activityMsg struct{}

// pageLoadedMsg carries the coordinator state after a load attempt.
// Fetch failures arrive recorded in the state, not as an error.
type pageLoadedMsg struct {
	state paging.State[feedItem]
}

// feedSwitchedMsg carries the state after a route change reload.
type feedSwitchedMsg struct {
	route string
	state paging.State[feedItem]
}

// Command factories for async operations

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// loadMoreCmd asks the coordinator for the next page.
func loadMoreCmd(c *paging.Coordinator[feedItem]) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_ = c.LoadMore(ctx)
		return pageLoadedMsg{state: c.State()}
	}
}

// switchFeedCmd reloads the coordinator from page one for a new route.
func switchFeedCmd(c *paging.Coordinator[feedItem], route string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_ = c.Refresh(ctx)
		return feedSwitchedMsg{route: route, state: c.State()}
	}
}

// enterRouteCmd announces the navigation on the bus before reloading,
// so the overlay cycle starts while the fetch is still in flight.
func enterRouteCmd(bus *event.Bus, c *paging.Coordinator[feedItem], route string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_ = bus.Publish(ctx, event.RouteChanged("feedbrowse", route))
		_ = c.Refresh(ctx)
		return feedSwitchedMsg{route: route, state: c.State()}
	}
}

// waitActivityCmd blocks until a component subscription signals a
// change, then hands control back to Update for a re-render.
func waitActivityCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return activityMsg{}
	}
}
