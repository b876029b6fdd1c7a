// Package menu implements the console's navigation state machine.
//
// Step is a pure function of (state, key, catalog): it never touches the
// terminal, never launches processes and never reads catalog entries outside
// [0, N). Side effects are described by the returned Effect and carried out by
// the caller.
package menu

import "mitremenu/internal/catalog"

// View identifies the screen the console is on.
type View int

const (
	MenuList View = iota
	TestDetail
	// Executing is transient: an emulation command owns the terminal.
	Executing
	// Terminated is the only terminal state.
	Terminated
)

func (v View) String() string {
	switch v {
	case MenuList:
		return "menu"
	case TestDetail:
		return "detail"
	case Executing:
		return "executing"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Key is a logical key, already resolved from raw terminal input.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeySelect
	KeyBack
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeySelect:
		return "select"
	case KeyBack:
		return "back"
	case KeyQuit:
		return "quit"
	default:
		return "other"
	}
}

// EffectKind tells the caller what to do after a transition.
type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectRender asks for a redraw; every state change produces one.
	EffectRender
	// EffectExecute asks for Command to be run; call Finish once it returns.
	EffectExecute
	// EffectQuit asks for the program to end with a success exit code.
	EffectQuit
)

// Effect is the side effect requested by a transition.
type Effect struct {
	Kind    EffectKind
	Command string
}

// State is the console's UI state.
type State struct {
	View     View
	Selected int
	// Active is the test captured when the detail view was entered. It is a
	// copy, so later cursor moves never alter it.
	Active *catalog.TestCase
}

// New returns the start state: the menu with the first test selected.
func New() State {
	return State{View: MenuList}
}

// Step applies key to s and returns the next state plus the requested effect.
// Unrecognized keys leave the state unchanged and request nothing.
func Step(s State, key Key, cat catalog.Catalog) (State, Effect) {
	n := cat.Len()
	if n == 0 {
		return s, Effect{}
	}

	switch s.View {
	case MenuList:
		switch key {
		case KeyUp:
			s.Selected = wrap(s.Selected-1, n)
			return s, Effect{Kind: EffectRender}
		case KeyDown:
			s.Selected = wrap(s.Selected+1, n)
			return s, Effect{Kind: EffectRender}
		case KeySelect:
			s.Selected = wrap(s.Selected, n)
			test := cat.At(s.Selected)
			s.Active = &test
			s.View = TestDetail
			return s, Effect{Kind: EffectRender}
		case KeyQuit:
			s.View = Terminated
			s.Active = nil
			return s, Effect{Kind: EffectQuit}
		}

	case TestDetail:
		switch key {
		case KeySelect:
			if s.Active == nil {
				return s, Effect{}
			}
			s.View = Executing
			return s, Effect{Kind: EffectExecute, Command: s.Active.Command}
		case KeyBack:
			s.View = MenuList
			s.Active = nil
			return s, Effect{Kind: EffectRender}
		}
	}

	return s, Effect{}
}

// Finish completes an execution. The menu comes back with the selection it
// had before, whatever the command's exit status was.
func Finish(s State) State {
	if s.View != Executing {
		return s
	}
	s.View = MenuList
	s.Active = nil
	return s
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
