// Package gpio provides the button input and the sensor data line with
// hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Reader reads the button line.
type Reader interface {
	// Read returns the logical button state: true = pressed.
	// The button is wired active low: raw 0 = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default line offsets (BCM numbering) and chip.
const (
	DefaultChip      = "gpiochip0"
	DefaultPinButton = 17
	DefaultPinSensor = 4
)

// NanoCounter is a cycle counter backed by the monotonic clock, counting
// nanoseconds. It wraps every ~4.3 seconds, far longer than one sensor
// transaction.
type NanoCounter struct {
	epoch time.Time
}

// NewNanoCounter returns a counter starting at zero.
func NewNanoCounter() *NanoCounter {
	return &NanoCounter{epoch: time.Now()}
}

// Cycles returns elapsed nanoseconds truncated to 32 bits.
func (c *NanoCounter) Cycles() uint32 {
	return uint32(time.Since(c.epoch).Nanoseconds())
}

// CyclesPerMicrosecond is 1000 for a nanosecond counter.
func (c *NanoCounter) CyclesPerMicrosecond() uint32 {
	return 1000
}
