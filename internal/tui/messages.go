package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/escat/internal/engine"
)

// StageEventMsg delivers one runner progress event to the TUI.
type StageEventMsg struct{ Event engine.Event }

// RunDoneMsg signals that the runner has returned.
type RunDoneMsg struct {
	Result *engine.RunResult
	Err    error
}

// Progress adapts a program's Send into a runner progress callback.
func Progress(send func(tea.Msg)) func(engine.Event) {
	return func(ev engine.Event) {
		send(StageEventMsg{Event: ev})
	}
}
