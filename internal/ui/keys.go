package ui

import (
	"mitremenu/internal/menu"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines all keyboard shortcuts for the console.
// Each binding includes the actual keys and help text for display.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding

	// Adapter-only: never reach the state machine.
	Interrupt key.Binding
	Copy      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎ (Enter)", "Open / execute"),
		),
		// Terminals disagree on what the backspace key sends (DEL or BS);
		// both, plus delete and escape, mean the same thing here.
		Back: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h", "delete", "esc"),
			key.WithHelp("⌫ (Backspace)", "Back to menu"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Quit"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "Quit immediately"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy command"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "Scroll details up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "Scroll details down"),
		),
	}
}

// detailScrollKeys returns the viewport bindings used to scroll the detail view.
func (k KeyMap) detailScrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		Up:       k.Up,
		Down:     k.Down,
		PageUp:   k.PageUp,
		PageDown: k.PageDown,
	}
}

// Resolve maps a terminal key press to the logical key the state machine
// understands. Anything unbound resolves to menu.KeyOther.
func (k KeyMap) Resolve(msg tea.KeyMsg) menu.Key {
	switch {
	case key.Matches(msg, k.Up):
		return menu.KeyUp
	case key.Matches(msg, k.Down):
		return menu.KeyDown
	case key.Matches(msg, k.Select):
		return menu.KeySelect
	case key.Matches(msg, k.Back):
		return menu.KeyBack
	case key.Matches(msg, k.Quit):
		return menu.KeyQuit
	default:
		return menu.KeyOther
	}
}
