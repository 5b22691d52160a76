package timer

import "time"

// Clock is a monotonic millisecond counter that wraps silently at 2^32.
type Clock interface {
	NowMs() uint32
}

// SystemClock counts milliseconds since it was created using the runtime's
// monotonic clock.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a clock starting at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

// NowMs returns elapsed milliseconds truncated to 32 bits.
func (c *SystemClock) NowMs() uint32 {
	return uint32(time.Since(c.epoch).Milliseconds())
}
