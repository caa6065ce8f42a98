package main

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	accent    = lipgloss.Color("#7C6FF0")
	slateDark = lipgloss.Color("#1F2430")
	dimGray   = lipgloss.Color("#6B7280")
	lightGray = lipgloss.Color("#9CA3AF")
	white     = lipgloss.Color("#F9FAFB")
	red       = lipgloss.Color("#EF4444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(white).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(white).
			Background(accent).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(red)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(white).
				Background(slateDark).
				Bold(true).
				Padding(0, 1)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1)

	skeletonStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(accent)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 3)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(accent)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(dimGray)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const skeletonBar = "░░░░░░░░░░░░░░░░░░░░░░░░░░░░"
