package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the run view.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
)

// Status styles, bold foreground.
var (
	StyleStatusGreen   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStatusYellow  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStatusRed     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleStatusUnknown = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// Table styles.
var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(colorGray)

	StyleTableRow = lipgloss.NewStyle().
			Foreground(colorWhite)
)

// Utility styles.
var (
	StyleError   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorGray)
	StyleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// StatusStyle returns the style for a run or stage status word.
// Unknown words render dim.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "done":
		return StyleStatusGreen
	case "partial", "running":
		return StyleStatusYellow
	case "failed", "cancelled":
		return StyleStatusRed
	default:
		return StyleStatusUnknown
	}
}
