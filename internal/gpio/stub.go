//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/dht-display/internal/dht"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chip string, pin int) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// DataLine is not available on non-Linux platforms.
type DataLine struct{}

// NewDataLine returns an error on non-Linux platforms.
func NewDataLine(chip string, pin int) (*DataLine, error) {
	return nil, errUnsupported
}

func (d *DataLine) SetOutput() error            { return errUnsupported }
func (d *DataLine) SetInput() error             { return errUnsupported }
func (d *DataLine) Write(level dht.Level) error { return errUnsupported }
func (d *DataLine) Read() (dht.Level, error)    { return dht.Low, errUnsupported }
func (d *DataLine) Close() error                { return nil }
