package dht

// Nominal protocol timings in microseconds, used by the simulator.
const (
	ackUs      = 80
	bitLowUs   = 50
	bitZeroUs  = 26
	bitOneUs   = 70
	trailingUs = 50
)

// EncodePulses returns the nominal low/high widths, in microseconds, that a
// sensor transmits for data.
func EncodePulses(data [5]byte) [PulseCount]uint32 {
	var pulses [PulseCount]uint32
	for i := 0; i < PulseCount/2; i++ {
		bit := data[i/8] >> (7 - uint(i%8)) & 1
		pulses[2*i] = bitLowUs
		if bit == 1 {
			pulses[2*i+1] = bitOneUs
		} else {
			pulses[2*i+1] = bitZeroUs
		}
	}
	return pulses
}

type segment struct {
	level Level
	end   uint32 // cycles after the switch to input
}

// FakeLine simulates a sensor on its data line together with the cycle
// counter that times it. Time is virtual: every Cycles call advances it by
// one cycle and every Read by ReadCost cycles, so decoding is deterministic.
type FakeLine struct {
	// CyclesPerUs is the virtual counter rate.
	CyclesPerUs uint32
	// ReadCost is how many cycles a Read consumes.
	ReadCost uint32
	// NoResponse leaves the line idle high after the start signal.
	NoResponse bool
	// StuckAtBit, when >= 0, holds the line low from that bit onward.
	StuckAtBit int
	// ReadErr, if set, is returned by Read while the line is an input.
	ReadErr error

	// Writes records every level written while the line was an output.
	Writes []Level
	// StartLowUs is the measured length of the last start signal.
	StartLowUs uint32
	// Transactions counts switches to input.
	Transactions int

	data     [5]byte
	now      uint32
	output   bool
	level    Level
	lowAt    uint32
	origin   uint32
	segments []segment
	cursor   int
}

// NewFakeLine creates a simulated sensor that answers with data.
func NewFakeLine(data [5]byte) *FakeLine {
	return &FakeLine{
		CyclesPerUs: 8,
		ReadCost:    2,
		StuckAtBit:  -1,
		data:        data,
		level:       High,
	}
}

// SetData changes the frame sent on the next transaction.
func (f *FakeLine) SetData(data [5]byte) {
	f.data = data
}

// SetOutput switches the line to output.
func (f *FakeLine) SetOutput() error {
	f.output = true
	return nil
}

// SetInput switches the line to input and starts the sensor's response.
func (f *FakeLine) SetInput() error {
	f.output = false
	f.origin = f.now
	f.cursor = 0
	f.segments = f.response()
	f.Transactions++
	return nil
}

// Write drives the line while it is an output.
func (f *FakeLine) Write(level Level) error {
	if level == Low && f.level != Low {
		f.lowAt = f.now
	}
	if level == High && f.level == Low {
		f.StartLowUs = (f.now - f.lowAt) / f.CyclesPerUs
	}
	f.level = level
	f.Writes = append(f.Writes, level)
	return nil
}

// Read samples the line.
func (f *FakeLine) Read() (Level, error) {
	f.now += f.ReadCost
	if f.output {
		return f.level, nil
	}
	if f.ReadErr != nil {
		return Low, f.ReadErr
	}
	t := f.now - f.origin
	for f.cursor < len(f.segments) && t >= f.segments[f.cursor].end {
		f.cursor++
	}
	if f.cursor >= len(f.segments) {
		return High, nil
	}
	return f.segments[f.cursor].level, nil
}

// Cycles returns the virtual counter.
func (f *FakeLine) Cycles() uint32 {
	f.now++
	return f.now
}

// CyclesPerMicrosecond returns the virtual counter rate.
func (f *FakeLine) CyclesPerMicrosecond() uint32 {
	return f.CyclesPerUs
}

func (f *FakeLine) response() []segment {
	if f.NoResponse {
		return nil
	}
	var segs []segment
	var end uint32
	add := func(level Level, us uint32) {
		end += us * f.CyclesPerUs
		segs = append(segs, segment{level: level, end: end})
	}

	add(Low, ackUs)
	add(High, ackUs)
	pulses := EncodePulses(f.data)
	for i := 0; i < PulseCount; i += 2 {
		if f.StuckAtBit >= 0 && i/2 >= f.StuckAtBit {
			add(Low, 10*PortTimeoutUs)
			return segs
		}
		add(Low, pulses[i])
		add(High, pulses[i+1])
	}
	add(Low, trailingUs)
	return segs
}
