package dht

// Level is a digital line level.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Line is the sensor's bidirectional data pin.
type Line interface {
	SetOutput() error
	SetInput() error
	Write(level Level) error
	Read() (Level, error)
}

// Counter is a free-running high-resolution counter. Differences between two
// reads are valid across a wrap as long as less than 2^32 cycles elapsed.
type Counter interface {
	Cycles() uint32
	CyclesPerMicrosecond() uint32
}

// TimeoutCount is the pulse width reported when a level outlasts the port
// timeout.
const TimeoutCount = ^uint32(0)

// PortTimeoutUs bounds how long a single level may be held.
const PortTimeoutUs = 1000

// delayMicros spins on the counter for us microseconds.
func delayMicros(c Counter, us uint32) {
	n := us * c.CyclesPerMicrosecond()
	start := c.Cycles()
	for c.Cycles()-start < n {
	}
}

// expectPulse counts cycles while the line holds level. It returns
// TimeoutCount if the level is held longer than PortTimeoutUs.
func expectPulse(line Line, c Counter, level Level) (uint32, error) {
	limit := PortTimeoutUs * c.CyclesPerMicrosecond()
	start := c.Cycles()
	for {
		got, err := line.Read()
		if err != nil {
			return TimeoutCount, err
		}
		elapsed := c.Cycles() - start
		if got != level {
			return elapsed, nil
		}
		if elapsed >= limit {
			return TimeoutCount, nil
		}
	}
}
