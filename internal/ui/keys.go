package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the star map key bindings.
type KeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Find      key.Binding
	Crosshair key.Binding
	Help      key.Binding
	Quit      key.Binding

	// Find prompt
	Submit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n/→", "next bright star"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left", "h"),
			key.WithHelp("p/←", "previous"),
		),
		Find: key.NewBinding(
			key.WithKeys("/", "f"),
			key.WithHelp("/", "find star"),
		),
		Crosshair: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "crosshair"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "go"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Find, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Find},
		{k.Crosshair, k.Help, k.Quit},
	}
}
