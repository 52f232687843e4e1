package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   "escat " + cluster base URL
//	center: colored "● STATUS" for the whole run
//	right:  "Run: <id>  Elapsed: <d>"
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := "escat " + app.baseURL
	status := app.status()
	center := StatusStyle(status).Render("● " + strings.ToUpper(status))
	right := StyleDim.Render(fmt.Sprintf("Run: %s  Elapsed: %s", app.runID, formatDuration(app.elapsed())))

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	leftVW := lipgloss.Width(left)
	centerVW := lipgloss.Width(center)
	rightVW := lipgloss.Width(right)

	// Drop the right block first, then truncate the URL, so the bar stays on one line.
	if leftVW+centerVW+rightVW+2 > innerWidth {
		right = ""
		rightVW = 0
	}
	if avail := innerWidth - centerVW - 1; leftVW > avail {
		left = truncate(left, avail)
		leftVW = lipgloss.Width(left)
	}

	spacing := innerWidth - leftVW - centerVW - rightVW
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).MaxHeight(1).Render(row)
}

// formatDuration formats an elapsed time compactly, e.g. "7s" or "2m05s".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// truncate shortens s to at most n display cells, marking the cut with "…".
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 || len(r) < n {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
