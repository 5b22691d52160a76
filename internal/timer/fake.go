package timer

// FakeClock is a manually advanced clock for tests.
type FakeClock struct {
	Ms uint32
}

// NewFakeClock creates a FakeClock reading start.
func NewFakeClock(start uint32) *FakeClock {
	return &FakeClock{Ms: start}
}

// NowMs returns the current fake time.
func (c *FakeClock) NowMs() uint32 {
	return c.Ms
}

// Advance moves the clock forward, wrapping at 2^32 like a hardware tick.
func (c *FakeClock) Advance(ms uint32) {
	c.Ms += ms
}

// Set jumps the clock to ms.
func (c *FakeClock) Set(ms uint32) {
	c.Ms = ms
}
