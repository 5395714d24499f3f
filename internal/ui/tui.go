// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the key command channel
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies a user request from the keyboard
type CommandKind int

const (
	CommandPause CommandKind = iota
	CommandVolume
	CommandMute
)

// Command is a key press translated for the player
type Command struct {
	Kind   CommandKind
	Volume int
	Muted  bool
}

// Controls holds channels for key command communication
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

func (c *Controls) send(cmd Command) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
		// Drop rather than block the UI
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model. controls and screen may be nil.
func NewModel(controls *Controls, screen *Screen, volume int) Model {
	return Model{
		volume:   volume,
		state:    "loading",
		controls: controls,
		screen:   screen,
	}
}

// Run creates the TUI program and attaches the screen to it
func Run(controls *Controls, screen *Screen, volume int) *tea.Program {
	p := tea.NewProgram(NewModel(controls, screen, volume), tea.WithAltScreen())
	if screen != nil {
		screen.attach(p)
	}
	return p
}
