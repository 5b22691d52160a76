// Package dht reads DHT11, DHT22 and AM2301 temperature/humidity sensors over
// their single-wire pulse-width protocol.
//
// The sensor is driven through three capabilities: a data Line, a
// high-resolution Counter used both to delay and to measure pulses, and a
// millisecond timer.Clock used for rate limiting. A sample is a bounded
// busy-wait transaction of a few milliseconds; it cannot be cancelled.
package dht

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sweeney/dht-display/internal/timer"
)

// MinIntervalMs is the minimum time between two successful samples.
const MinIntervalMs = 2000

// Errors returned by Sample and ConvertUnit.
var (
	ErrTimeout        = errors.New("dht: timeout")
	ErrDecode         = errors.New("dht: decode error")
	ErrChecksum       = errors.New("dht: checksum mismatch")
	ErrNoValidData    = errors.New("dht: no valid data")
	ErrUnknownVariant = errors.New("dht: unknown sensor variant")
	ErrInvalidUnit    = errors.New("dht: invalid unit")
)

// Variant selects the sensor's data encoding and start signal.
type Variant uint8

const (
	// DHT11 reports integer humidity and temperature.
	DHT11 Variant = iota
	// DHT22 reports tenths, with a sign bit on temperature.
	DHT22
	// AM2301 uses the DHT22 encoding.
	AM2301
)

func (v Variant) String() string {
	switch v {
	case DHT11:
		return "DHT11"
	case DHT22:
		return "DHT22"
	case AM2301:
		return "AM2301"
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// StartSignalUs is how long the host holds the line low to wake the sensor.
func (v Variant) StartSignalUs() uint32 {
	switch v {
	case DHT22, AM2301:
		return 1200
	}
	return 18000
}

// ParseVariant parses a case-insensitive variant name.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DHT11":
		return DHT11, nil
	case "DHT22", "AM2302":
		return DHT22, nil
	case "AM2301":
		return AM2301, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Unit is a temperature unit.
type Unit uint8

const (
	Celsius Unit = iota + 1
	Fahrenheit
)

func (u Unit) String() string {
	switch u {
	case Celsius:
		return "C"
	case Fahrenheit:
		return "F"
	}
	return fmt.Sprintf("Unit(%d)", uint8(u))
}

func (u Unit) valid() bool {
	return u == Celsius || u == Fahrenheit
}

// Reading is the last decoded sample. Temperature and Humidity are only
// meaningful when Valid is set.
type Reading struct {
	Temperature float64
	Humidity    float64
	Unit        Unit
	Timestamp   uint32 // clock ms of the last successful sample
	Valid       bool
}

// Config describes a sensor and the capabilities it is read through.
type Config struct {
	Pin     int
	Variant Variant
	Line    Line
	Counter Counter
	Clock   timer.Clock
}

// Sensor owns the reading for one sensor on one pin.
type Sensor struct {
	pin      int
	variant  Variant
	line     Line
	counter  Counter
	clock    timer.Clock
	reading  Reading
	lastRead uint32
}

// NewSensor creates a sensor with no valid data. The first Sample is never
// rate limited.
func NewSensor(cfg Config) (*Sensor, error) {
	if cfg.Line == nil || cfg.Counter == nil || cfg.Clock == nil {
		return nil, fmt.Errorf("dht: missing capability: %w", timer.ErrInvalidArgument)
	}
	if cfg.Variant > AM2301 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, cfg.Variant)
	}
	return &Sensor{
		pin:      cfg.Pin,
		variant:  cfg.Variant,
		line:     cfg.Line,
		counter:  cfg.Counter,
		clock:    cfg.Clock,
		reading:  Reading{Unit: Celsius},
		lastRead: cfg.Clock.NowMs() - MinIntervalMs,
	}, nil
}

// Pin returns the GPIO identity the sensor was configured with.
func (s *Sensor) Pin() int { return s.pin }

// Variant returns the sensor variant.
func (s *Sensor) Variant() Variant { return s.variant }

// Reading returns the last known reading.
func (s *Sensor) Reading() Reading { return s.reading }

// Sample reads the sensor and stores the result in unit.
//
// Within MinIntervalMs of the last successful sample it does nothing and
// returns the stored reading. On failure the stored reading, including its
// validity, is returned unchanged together with the error.
func (s *Sensor) Sample(unit Unit) (Reading, error) {
	if !unit.valid() {
		return s.reading, fmt.Errorf("%w: %v", ErrInvalidUnit, unit)
	}

	now := s.clock.NowMs()
	if now-s.lastRead < MinIntervalMs {
		return s.reading, nil
	}

	data, err := s.transact()
	if err != nil {
		return s.reading, err
	}
	temperature, humidity, err := Interpret(s.variant, data)
	if err != nil {
		return s.reading, err
	}

	s.lastRead = now
	s.reading = Reading{
		Temperature: temperature,
		Humidity:    humidity,
		Unit:        Celsius,
		Timestamp:   now,
		Valid:       true,
	}
	if err := s.ConvertUnit(unit); err != nil {
		return s.reading, err
	}
	return s.reading, nil
}

// ConvertUnit converts the stored temperature to unit. It is a no-op when the
// reading is already in unit.
func (s *Sensor) ConvertUnit(unit Unit) error {
	if !unit.valid() {
		return fmt.Errorf("%w: %v", ErrInvalidUnit, unit)
	}
	if !s.reading.Valid {
		return ErrNoValidData
	}
	if s.reading.Unit == unit {
		return nil
	}
	switch unit {
	case Fahrenheit:
		s.reading.Temperature = CelsiusToFahrenheit(s.reading.Temperature)
	case Celsius:
		s.reading.Temperature = FahrenheitToCelsius(s.reading.Temperature)
	}
	s.reading.Unit = unit
	return nil
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 { return c*1.8 + 32 }

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(f float64) float64 { return (f - 32) / 1.8 }

// transact performs one start/acknowledge/data exchange and returns the
// checksum-verified frame.
func (s *Sensor) transact() ([5]byte, error) {
	var data [5]byte

	if err := s.line.SetOutput(); err != nil {
		return data, fmt.Errorf("dht: set output: %w", err)
	}
	if err := s.line.Write(Low); err != nil {
		return data, fmt.Errorf("dht: start signal: %w", err)
	}
	delayMicros(s.counter, s.variant.StartSignalUs())
	if err := s.line.Write(High); err != nil {
		return data, fmt.Errorf("dht: release line: %w", err)
	}
	delayMicros(s.counter, 30)
	if err := s.line.SetInput(); err != nil {
		return data, fmt.Errorf("dht: set input: %w", err)
	}

	// Acknowledge: ~80µs low, then ~80µs high.
	for _, level := range []Level{Low, High} {
		delayMicros(s.counter, 5)
		n, err := expectPulse(s.line, s.counter, level)
		if err != nil {
			return data, fmt.Errorf("dht: read line: %w", err)
		}
		if n == TimeoutCount {
			return data, fmt.Errorf("%w: waiting for %v acknowledge", ErrTimeout, level)
		}
	}

	var pulses [PulseCount]uint32
	for i := 0; i < PulseCount; i += 2 {
		var err error
		if pulses[i], err = expectPulse(s.line, s.counter, Low); err != nil {
			return data, fmt.Errorf("dht: read line: %w", err)
		}
		if pulses[i+1], err = expectPulse(s.line, s.counter, High); err != nil {
			return data, fmt.Errorf("dht: read line: %w", err)
		}
	}

	data, err := DecodePulses(pulses)
	if err != nil {
		return data, err
	}
	if err := VerifyChecksum(data); err != nil {
		return data, err
	}
	return data, nil
}
