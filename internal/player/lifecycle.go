// ABOUTME: Playback lifecycle state machine
// ABOUTME: Loading, Playing, Paused, Draining and Finished with guarded transitions
package player

import (
	"errors"
	"fmt"
	"sync"
)

// State is the playback lifecycle state
type State int

const (
	Loading State = iota
	Playing
	Paused
	Draining
	Finished
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Draining:
		return "draining"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a transition is not allowed from the
// current state
var ErrInvalidTransition = errors.New("invalid state transition")

// Lifecycle guards the playback state. Safe for concurrent use.
type Lifecycle struct {
	mu       sync.Mutex
	state    State
	onChange func(from, to State)
}

// NewLifecycle creates a lifecycle in the Loading state
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: Loading}
}

// OnChange registers a callback invoked after every transition. It runs on
// the goroutine that made the transition.
func (l *Lifecycle) OnChange(fn func(from, to State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// State returns the current state
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start moves Loading to Playing
func (l *Lifecycle) Start() error {
	return l.transition(Playing, Loading)
}

// TogglePause flips between Playing and Paused and returns the new state
func (l *Lifecycle) TogglePause() (State, error) {
	l.mu.Lock()
	var to State
	switch l.state {
	case Playing:
		to = Paused
	case Paused:
		to = Playing
	default:
		from := l.state
		l.mu.Unlock()
		return from, fmt.Errorf("%w: cannot toggle pause while %v", ErrInvalidTransition, from)
	}
	from, fn := l.set(to)
	l.mu.Unlock()

	if fn != nil {
		fn(from, to)
	}
	return to, nil
}

// BeginDrain moves Playing or Paused to Draining
func (l *Lifecycle) BeginDrain() error {
	return l.transition(Draining, Playing, Paused)
}

// Finish moves Draining to Finished
func (l *Lifecycle) Finish() error {
	return l.transition(Finished, Draining)
}

func (l *Lifecycle) transition(to State, allowed ...State) error {
	l.mu.Lock()
	ok := false
	for _, s := range allowed {
		if l.state == s {
			ok = true
			break
		}
	}
	if !ok {
		from := l.state
		l.mu.Unlock()
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, from, to)
	}
	from, fn := l.set(to)
	l.mu.Unlock()

	if fn != nil {
		fn(from, to)
	}
	return nil
}

// set must hold l.mu
func (l *Lifecycle) set(to State) (State, func(from, to State)) {
	from := l.state
	l.state = to
	return from, l.onChange
}
