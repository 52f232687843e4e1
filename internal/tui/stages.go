package tui

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// columnDef describes a single column in the stage table.
type columnDef struct {
	Title string
	Width int
	Align lipgloss.Position
}

var stageColumns = []columnDef{
	{Title: "STAGE", Width: 10, Align: lipgloss.Left},
	{Title: "STATUS", Width: 11, Align: lipgloss.Left},
	{Title: "RECORDS", Width: 8, Align: lipgloss.Right},
	{Title: "SKIPPED", Width: 8, Align: lipgloss.Right},
	{Title: "TIME", Width: 7, Align: lipgloss.Right},
}

// minArtifactWidth is the narrowest the trailing ARTIFACT column may get.
const minArtifactWidth = 8

// renderStages renders one row per stage with its status and counters.
func renderStages(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	artifactWidth := width
	for _, c := range stageColumns {
		artifactWidth -= c.Width + 1
	}
	if artifactWidth < minArtifactWidth {
		artifactWidth = minArtifactWidth
	}

	var b strings.Builder
	hdr := make([]string, 0, len(stageColumns)+1)
	for _, c := range stageColumns {
		hdr = append(hdr, cell(c.Title, c))
	}
	hdr = append(hdr, "ARTIFACT")
	b.WriteString(StyleTableHeader.Render(strings.Join(hdr, " ")))

	for _, r := range app.rows {
		b.WriteString("\n")
		b.WriteString(renderStageRow(app, r, artifactWidth))
	}
	return b.String()
}

func renderStageRow(app *App, r stageRow, artifactWidth int) string {
	status := r.state.String()
	statusText := StatusStyle(status).Render(status)
	if r.state == stateRunning {
		statusText = app.spinner.View() + " " + statusText
	}

	records, skipped, took := "-", "-", "-"
	if r.state >= stateDone {
		records = strconv.Itoa(r.stats.TotalRecordCount)
		skipped = strconv.Itoa(r.stats.FailedItemCount)
		took = formatDuration(r.elapsed)
	}

	artifact := ""
	switch {
	case r.err != nil:
		artifact = StyleError.Render(truncate(r.err.Error(), artifactWidth))
	case r.path != "":
		artifact = StyleDim.Render(truncate(filepath.Base(r.path), artifactWidth))
	case r.state == statePartial && r.stats.ChunkCount == 0:
		artifact = StyleDim.Render("no artifact")
	}

	cells := []string{
		StyleTableRow.Render(cell(string(r.stage), stageColumns[0])),
		cell(statusText, stageColumns[1]),
		cell(records, stageColumns[2]),
		cell(skipped, stageColumns[3]),
		cell(took, stageColumns[4]),
		artifact,
	}
	return strings.Join(cells, " ")
}

// cell pads or truncates s to the column width using display width.
func cell(s string, c columnDef) string {
	if lipgloss.Width(s) > c.Width {
		s = truncate(s, c.Width)
	}
	return lipgloss.PlaceHorizontal(c.Width, c.Align, s)
}
