// ABOUTME: Display implementations for the presentation consumer
// ABOUTME: Screen forwards pictures to the TUI; Headless counts them without drawing
package ui

import (
	"fmt"
	"image"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// sender is the part of *tea.Program a Screen needs
type sender interface {
	Send(msg tea.Msg)
}

// Screen is a Display that draws into the TUI. It holds at most one picture
// in flight: Ready is false until the model has taken the previous one.
type Screen struct {
	program sender
	pending atomic.Bool
}

// NewScreen creates a screen; Run attaches it to a program
func NewScreen() *Screen {
	return &Screen{}
}

func (s *Screen) attach(p sender) {
	s.program = p
}

// Ready reports whether the last picture has been taken by the model
func (s *Screen) Ready() bool {
	return s.program != nil && !s.pending.Load()
}

// Submit sends a picture to the model
func (s *Screen) Submit(img *image.RGBA) error {
	if s.program == nil {
		return fmt.Errorf("screen not attached to a program")
	}
	if img == nil {
		return fmt.Errorf("nil picture")
	}
	s.pending.Store(true)
	s.program.Send(FrameMsg{Image: img})
	return nil
}

func (s *Screen) shown() {
	s.pending.Store(false)
}

// Headless is a Display that is always ready and keeps only the last picture
type Headless struct {
	frames atomic.Int64
	last   atomic.Pointer[image.RGBA]
}

// NewHeadless creates a headless display
func NewHeadless() *Headless {
	return &Headless{}
}

// Ready always returns true
func (h *Headless) Ready() bool {
	return true
}

// Submit records the picture
func (h *Headless) Submit(img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("nil picture")
	}
	h.last.Store(img)
	h.frames.Add(1)
	return nil
}

// Frames returns how many pictures were submitted
func (h *Headless) Frames() int64 {
	return h.frames.Load()
}

// Last returns the most recent picture, or nil
func (h *Headless) Last() *image.RGBA {
	return h.last.Load()
}
