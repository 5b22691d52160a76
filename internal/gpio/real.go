//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/dht-display/internal/dht"
)

// RealReader reads the button from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	line *gpiocdev.Line
}

// NewRealReader requests the button line as an input with pull-up.
func NewRealReader(chip string, pin int) (*RealReader, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	return &RealReader{line: line}, nil
}

// Read returns true while the button is pressed (raw 0).
func (r *RealReader) Read() (bool, error) {
	raw, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return raw == 0, nil
}

// Close releases the line.
func (r *RealReader) Close() error {
	if r.line == nil {
		return nil
	}
	if err := r.line.Close(); err != nil {
		return fmt.Errorf("close button pin: %w", err)
	}
	return nil
}

// DataLine is the sensor's bidirectional data pin. The line is requested once
// and reconfigured between output and input for each transaction.
type DataLine struct {
	line *gpiocdev.Line
}

// NewDataLine requests the sensor pin, idle high as an input with pull-up.
func NewDataLine(chip string, pin int) (*DataLine, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request sensor pin %d: %w", pin, err)
	}
	return &DataLine{line: line}, nil
}

// SetOutput drives the line, starting high.
func (d *DataLine) SetOutput() error {
	return d.line.Reconfigure(gpiocdev.AsOutput(1))
}

// SetInput releases the line to the pull-up.
func (d *DataLine) SetInput() error {
	return d.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp)
}

// Write sets the output level.
func (d *DataLine) Write(level dht.Level) error {
	v := 0
	if level == dht.High {
		v = 1
	}
	return d.line.SetValue(v)
}

// Read samples the input level.
func (d *DataLine) Read() (dht.Level, error) {
	v, err := d.line.Value()
	if err != nil {
		return dht.Low, err
	}
	if v != 0 {
		return dht.High, nil
	}
	return dht.Low, nil
}

// Close returns the line to input and releases it.
func (d *DataLine) Close() error {
	var errs []error
	if err := d.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure sensor pin: %w", err))
	}
	if err := d.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sensor pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
