// Package debounce turns a noisy button level into a one-shot release event.
// The state machine is polled; it never blocks and never touches hardware
// directly. Time comes from an injected clock via internal/timer.
package debounce

import (
	"fmt"

	"github.com/sweeney/dht-display/internal/timer"
)

// DefaultWindowMs is the debounce window used by the display firmware.
const DefaultWindowMs = 40

// Input reads the raw button line. pressed is the logical level, already
// corrected for active-low wiring.
type Input interface {
	Read() (pressed bool, err error)
}

type state uint8

const (
	stateUp state = iota
	stateFalling
	stateDown
	stateRaising
)

func (s state) String() string {
	switch s {
	case stateUp:
		return "UP"
	case stateFalling:
		return "FALLING"
	case stateDown:
		return "DOWN"
	case stateRaising:
		return "RAISING"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// InvalidStateError is the panic value raised when the machine is found
// outside its four states. It signals a logic fault, not an input problem.
type InvalidStateError struct {
	State uint8
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("debounce: invalid state %d", e.State)
}

// Debouncer is a four-state UP/FALLING/DOWN/RAISING machine. A release is
// reported only after a press and the following release have each held for
// a full debounce window.
type Debouncer struct {
	input    Input
	timer    *timer.Timer
	state    state
	released bool
	onPress  func()
}

// New creates a Debouncer in the UP state.
func New(input Input, clock timer.Clock, windowMs uint32) (*Debouncer, error) {
	if input == nil {
		return nil, fmt.Errorf("debounce: nil input: %w", timer.ErrInvalidArgument)
	}
	t, err := timer.New(clock, windowMs)
	if err != nil {
		return nil, fmt.Errorf("debounce: window timer: %w", err)
	}
	return &Debouncer{input: input, timer: t, state: stateUp}, nil
}

// OnPress registers a hook called when a press is confirmed. Nil disables it.
func (d *Debouncer) OnPress(fn func()) {
	d.onPress = fn
}

// Poll reads the input once and advances the machine. It must be called
// often enough that no full press/release cycle fits between two calls.
// On a read error the state is left untouched.
func (d *Debouncer) Poll() error {
	pressed, err := d.input.Read()
	if err != nil {
		return fmt.Errorf("debounce: read input: %w", err)
	}

	switch d.state {
	case stateUp:
		if pressed {
			d.timer.Check()
			d.state = stateFalling
		}

	case stateFalling:
		if d.timer.Check() {
			if pressed {
				d.state = stateDown
				d.pressed()
			} else {
				d.state = stateUp
			}
		}

	case stateDown:
		if !pressed {
			d.timer.Check()
			d.state = stateRaising
		}

	case stateRaising:
		if d.timer.Check() {
			if !pressed {
				d.state = stateUp
				d.released = true
			} else {
				// Still held: treat the release as a bounce.
				d.state = stateDown
			}
		}

	default:
		panic(&InvalidStateError{State: uint8(d.state)})
	}
	return nil
}

// ConsumeRelease reports a confirmed release and clears it, so each release
// is observed at most once.
func (d *Debouncer) ConsumeRelease() bool {
	if !d.released {
		return false
	}
	d.released = false
	return true
}

// State returns the current state name.
func (d *Debouncer) State() string {
	return d.state.String()
}

func (d *Debouncer) pressed() {
	if d.onPress != nil {
		d.onPress()
	}
}
