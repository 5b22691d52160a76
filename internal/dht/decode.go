package dht

import "fmt"

// PulseCount is the number of widths captured after the acknowledgement:
// one low and one high pulse per data bit.
const PulseCount = 80

// DecodePulses turns 40 low/high width pairs into 5 bytes, MSB first. A bit
// is 1 when its high pulse is longer than the low pulse preceding it.
func DecodePulses(pulses [PulseCount]uint32) ([5]byte, error) {
	var data [5]byte
	for i := 0; i < PulseCount/2; i++ {
		low := pulses[2*i]
		high := pulses[2*i+1]
		if low == TimeoutCount || high == TimeoutCount {
			return data, fmt.Errorf("%w: bit %d timed out", ErrDecode, i)
		}
		data[i/8] <<= 1
		if high > low {
			data[i/8] |= 1
		}
	}
	return data, nil
}

// VerifyChecksum checks that the last byte is the 8-bit sum of the first four.
func VerifyChecksum(data [5]byte) error {
	sum := data[0] + data[1] + data[2] + data[3]
	if data[4] != sum {
		return fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrChecksum, data[4], sum)
	}
	return nil
}

// Interpret converts a verified frame to Celsius and relative humidity.
func Interpret(v Variant, data [5]byte) (temperature, humidity float64, err error) {
	switch v {
	case DHT11:
		return float64(data[2]), float64(data[0]), nil

	case DHT22, AM2301:
		raw := uint16(data[2]&0x7F)<<8 | uint16(data[3])
		temperature = float64(raw) / 10
		if data[2]&0x80 != 0 {
			temperature = -temperature
		}
		humidity = float64(uint16(data[0])<<8|uint16(data[1])) / 10
		return temperature, humidity, nil
	}
	return 0, 0, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
}
