package app

import (
	"errors"
	"fmt"

	"github.com/sweeney/dht-display/internal/dht"
	"github.com/sweeney/dht-display/internal/timer"
)

// Default periods in milliseconds.
const (
	DefaultResampleMs  = 60000
	DefaultBacklightMs = 30000
)

// Sensor is the temperature/humidity source.
type Sensor interface {
	Sample(unit dht.Unit) (dht.Reading, error)
	Reading() dht.Reading
	ConvertUnit(unit dht.Unit) error
}

// Button is a debounced button.
type Button interface {
	Poll() error
	ConsumeRelease() bool
}

// Display is the character display the readings are rendered to.
type Display interface {
	Clear() error
	Home() error
	SetCursor(col, row int) error
	Print(s string) error
	SetBacklight(on bool) error
}

// Config holds the application periods.
type Config struct {
	ResampleMs  uint32
	BacklightMs uint32
}

// Deps are the collaborators the application drives.
type Deps struct {
	Sensor  Sensor
	Button  Button
	Display Display
	Clock   timer.Clock
}

// App composes sampling, unit toggling and backlight timeout. It is not safe
// for concurrent use; Tick is called from a single polling loop.
type App struct {
	sensor    Sensor
	button    Button
	display   Display
	resample  *timer.Timer
	backlight *timer.Timer
	state     State
	counts    Counts
}

// New creates an App in UnitCBacklit. Call Init before the first Tick.
func New(cfg Config, deps Deps) (*App, error) {
	if deps.Sensor == nil || deps.Button == nil || deps.Display == nil {
		return nil, fmt.Errorf("app: missing collaborator: %w", timer.ErrInvalidArgument)
	}
	if cfg.ResampleMs == 0 {
		cfg.ResampleMs = DefaultResampleMs
	}
	if cfg.BacklightMs == 0 {
		cfg.BacklightMs = DefaultBacklightMs
	}
	resample, err := timer.New(deps.Clock, cfg.ResampleMs)
	if err != nil {
		return nil, fmt.Errorf("app: resample timer: %w", err)
	}
	backlight, err := timer.New(deps.Clock, cfg.BacklightMs)
	if err != nil {
		return nil, fmt.Errorf("app: backlight timer: %w", err)
	}
	return &App{
		sensor:    deps.Sensor,
		button:    deps.Button,
		display:   deps.Display,
		resample:  resample,
		backlight: backlight,
		state:     UnitCBacklit,
	}, nil
}

// Init turns the backlight on, takes a first Celsius sample and renders it.
// The display is refreshed even if the sample fails.
func (a *App) Init() []Event {
	a.state = UnitCBacklit

	var events []Event
	if err := a.display.SetBacklight(true); err != nil {
		events = append(events, a.event(EventDisplayError, err))
	}
	if _, err := a.sensor.Sample(dht.Celsius); err != nil {
		events = append(events, a.event(EventSampleFailed, err))
	} else {
		events = append(events, a.event(EventSample, nil))
	}
	events = append(events, a.render())

	a.count(events)
	return events
}

// Tick advances the button, resamples when due, and evaluates the state
// machine. The button is always polled before its release is consumed.
func (a *App) Tick() []Event {
	var events []Event

	if err := a.button.Poll(); err != nil {
		events = append(events, a.event(EventInputError, err))
	}

	if a.resample.Check() {
		if _, err := a.sensor.Sample(a.state.Unit()); err != nil {
			events = append(events, a.event(EventSampleFailed, err))
		} else {
			events = append(events, a.event(EventSample, nil), a.render())
		}
	}

	switch a.state {
	case UnitCBacklit, UnitFBacklit:
		if a.button.ConsumeRelease() {
			events = append(events, a.toggleUnit()...)
		} else if a.backlight.Check() {
			events = append(events, a.setBacklight(false)...)
		}

	case UnitCDark, UnitFDark:
		if a.button.ConsumeRelease() {
			events = append(events, a.setBacklight(true)...)
		}

	default:
		panic(&InvalidStateError{State: a.state})
	}

	a.count(events)
	return events
}

// State returns the current state.
func (a *App) State() State {
	return a.state
}

// Reading returns the sensor's last known reading.
func (a *App) Reading() dht.Reading {
	return a.sensor.Reading()
}

// Counts returns event counts since startup.
func (a *App) Counts() Counts {
	return a.counts
}

func (a *App) toggleUnit() []Event {
	next := UnitFBacklit
	if a.state == UnitFBacklit {
		next = UnitCBacklit
	}
	a.state = next
	// A press restarts the inactivity window.
	a.backlight.Stop()

	var events []Event
	err := a.sensor.ConvertUnit(next.Unit())
	if err != nil && !errors.Is(err, dht.ErrNoValidData) {
		events = append(events, a.event(EventUnitChanged, err))
	} else {
		events = append(events, a.event(EventUnitChanged, nil))
	}
	return append(events, a.render())
}

func (a *App) setBacklight(on bool) []Event {
	var next State
	switch a.state {
	case UnitCBacklit, UnitCDark:
		next = UnitCDark
		if on {
			next = UnitCBacklit
		}
	case UnitFBacklit, UnitFDark:
		next = UnitFDark
		if on {
			next = UnitFBacklit
		}
	default:
		panic(&InvalidStateError{State: a.state})
	}
	a.state = next

	typ := EventBacklightOff
	if on {
		typ = EventBacklightOn
	}
	events := []Event{a.event(typ, nil)}
	if err := a.display.SetBacklight(on); err != nil {
		events = append(events, a.event(EventDisplayError, err))
	}
	return events
}

func (a *App) render() Event {
	temp, hum := FormatLines(a.sensor.Reading(), a.state.Unit())
	if err := a.draw(temp, hum); err != nil {
		return a.event(EventDisplayError, err)
	}
	return a.event(EventDisplayUpdate, nil)
}

func (a *App) draw(temp, hum string) error {
	if err := a.display.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := a.display.Home(); err != nil {
		return fmt.Errorf("home: %w", err)
	}
	if err := a.display.Print(temp); err != nil {
		return fmt.Errorf("print temperature: %w", err)
	}
	if err := a.display.SetCursor(0, HumidityRow); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	if err := a.display.Print(hum); err != nil {
		return fmt.Errorf("print humidity: %w", err)
	}
	return nil
}

func (a *App) event(t EventType, err error) Event {
	return Event{Type: t, State: a.state, Reading: a.sensor.Reading(), Err: err}
}

func (a *App) count(events []Event) {
	for _, e := range events {
		switch e.Type {
		case EventSample:
			a.counts.Samples++
		case EventSampleFailed:
			a.counts.SampleFailures++
		case EventUnitChanged:
			a.counts.UnitChanges++
		case EventBacklightOff:
			a.counts.BacklightOff++
		case EventBacklightOn:
			a.counts.BacklightOn++
		case EventDisplayUpdate:
			a.counts.DisplayUpdates++
		case EventInputError, EventDisplayError:
			a.counts.Errors++
		}
	}
}
