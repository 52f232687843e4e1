package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the run view.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
}
