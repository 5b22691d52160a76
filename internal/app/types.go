// Package app contains the display's application state machine. Like the
// other core packages it has no hardware or OS dependencies: the sensor,
// button, display and clock are injected, and every side effect of a tick
// is reported back as an Event.
package app

import (
	"fmt"

	"github.com/sweeney/dht-display/internal/dht"
)

// State is the application state: selected unit and backlight.
type State uint8

const (
	UnitCBacklit State = iota
	UnitCDark
	UnitFBacklit
	UnitFDark
)

func (s State) String() string {
	switch s {
	case UnitCBacklit:
		return "UNIT_C_BACKLIT"
	case UnitCDark:
		return "UNIT_C_DARK"
	case UnitFBacklit:
		return "UNIT_F_BACKLIT"
	case UnitFDark:
		return "UNIT_F_DARK"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Unit returns the temperature unit selected in s.
func (s State) Unit() dht.Unit {
	if s == UnitFBacklit || s == UnitFDark {
		return dht.Fahrenheit
	}
	return dht.Celsius
}

// Backlit reports whether the backlight is on in s.
func (s State) Backlit() bool {
	return s == UnitCBacklit || s == UnitFBacklit
}

// InvalidStateError is the panic value raised when the machine is found
// outside its four states.
type InvalidStateError struct {
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("app: invalid state %d", uint8(e.State))
}

// EventType identifies a side effect of Init or Tick.
type EventType string

const (
	EventSample        EventType = "SAMPLE"
	EventSampleFailed  EventType = "SAMPLE_FAILED"
	EventUnitChanged   EventType = "UNIT_CHANGED"
	EventBacklightOff  EventType = "BACKLIGHT_OFF"
	EventBacklightOn   EventType = "BACKLIGHT_ON"
	EventInputError    EventType = "INPUT_ERROR"
	EventDisplayError  EventType = "DISPLAY_ERROR"
	EventDisplayUpdate EventType = "DISPLAY_UPDATE"
)

// Event records something the state machine did.
type Event struct {
	Type    EventType
	State   State       // state after the event
	Reading dht.Reading // reading at the time of the event
	Err     error       // set for failure events
}

// Counts tracks the number of each event type since startup.
type Counts struct {
	Samples        int
	SampleFailures int
	UnitChanges    int
	BacklightOff   int
	BacklightOn    int
	DisplayUpdates int
	Errors         int
}
