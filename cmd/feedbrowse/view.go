package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/feedkit/feedkit/pkg/overlay"
)

// View renders the header, the list body and the status footer.
func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m model) headerView() string {
	title := titleStyle.Render("feedbrowse")
	route := badgeStyle.Render(m.route())
	info := dimStyle.Render(fmt.Sprintf("page %d · cache %s", m.feed.CurrentPage, m.backend))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", route, "  ", info)
}

func (m model) bodyView() string {
	h := m.listHeight()

	if m.hud.Visible() {
		return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, m.overlayView())
	}

	if len(m.feed.Items) == 0 {
		var msg string
		switch {
		case m.feed.Loading || m.feed.LoadingMore:
			msg = m.spinner() + " Refreshing..."
		case m.feed.Err != nil:
			msg = errorStyle.Render("Could not load " + m.route())
		default:
			msg = dimStyle.Render("Nothing here yet.")
		}
		return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, msg)
	}

	top := m.windowTop()
	total := len(m.feed.Items) + len(m.skeletons)

	rows := make([]string, 0, h)
	for row := top; row < total && row-top < h; row++ {
		if row < len(m.feed.Items) {
			it := m.feed.Items[row]
			text := fmt.Sprintf("%s · %s", it.Title, it.Author)
			if row == m.cursor {
				rows = append(rows, selectedItemStyle.Render("▍ "+text))
			} else {
				rows = append(rows, normalItemStyle.Render("  "+text))
			}
		} else {
			rows = append(rows, skeletonStyle.Render("  "+skeletonBar))
		}
	}
	for len(rows) < h {
		rows = append(rows, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// overlayView is the navigation overlay box shown between routes.
func (m model) overlayView() string {
	label := fmt.Sprintf("%s Loading %s", m.spinner(), m.route())
	if m.hud.Phase == overlay.PhaseTimedOut {
		label = fmt.Sprintf("%s Still working on %s", m.spinner(), m.route())
	}
	return overlayStyle.Render(label)
}

func (m model) footerView() string {
	var status string
	switch {
	case m.feed.Err != nil:
		status = errorStyle.Render(fmt.Sprintf("load failed: %v (r to retry)", m.feed.Err))
	case m.feed.LoadingMore:
		status = m.spinner() + dimStyle.Render(" loading more...")
	case m.feed.HasMore:
		status = dimStyle.Render(fmt.Sprintf("%d of %d items · more available", len(m.feed.Items), m.cfg.Fetch.TotalItems))
	default:
		status = dimStyle.Render(fmt.Sprintf("%d items · end of feed", len(m.feed.Items)))
	}

	r := m.estimator.Current()
	visible := dimStyle.Render(fmt.Sprintf("rows %d..%d", r.Start, r.End))

	help := strings.Join([]string{
		helpKeyStyle.Render("j/k") + helpDescStyle.Render(" move"),
		helpKeyStyle.Render("n") + helpDescStyle.Render(" next feed"),
		helpKeyStyle.Render("r") + helpDescStyle.Render(" refresh"),
		helpKeyStyle.Render("q") + helpDescStyle.Render(" quit"),
	}, "  ")

	left := status
	right := visible + "  " + help
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m model) spinner() string {
	return spinnerStyle.Render(spinnerFrames[m.spinnerFrame%len(spinnerFrames)])
}
