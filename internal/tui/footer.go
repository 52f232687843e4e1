package tui

import "fmt"

// renderFooter renders the key hints at full terminal width. While the run is
// in progress quitting cancels it, so the hint says so.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	quit := keys.Quit.Help()
	quitDesc := "cancel run and quit"
	if app.done() {
		quitDesc = quit.Desc
	}

	var text string
	switch {
	case app.showHelp:
		help := keys.Help.Help()
		text = fmt.Sprintf("%s/ctrl+c: %s  %s: %s", quit.Key, quitDesc, help.Key, help.Desc)
	case app.done():
		text = fmt.Sprintf("run %s  %s: %s", app.status(), quit.Key, quitDesc)
	default:
		text = "? for help"
	}
	return StyleDim.Width(width).Render(text)
}
