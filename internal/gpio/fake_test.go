package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader([]bool{true, false, true})

	for i, want := range []bool{true, false, true} {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %v, got %v", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != true {
		t.Errorf("sample 3 (repeat): expected true, got %v", got)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]bool{true})

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader([]bool{true, false})

	// Consume first sample
	f.Read()

	// Reset
	f.Reset()

	// Should read first sample again
	got, _ := f.Read()
	if got != true {
		t.Errorf("after reset: expected true, got %v", got)
	}
}

func TestFakeReaderPress(t *testing.T) {
	f := NewFakeReader([]bool{false})
	f.Press(3)

	want := []bool{false, true, true, true, false, false, false}
	if len(f.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(f.Samples))
	}
	for i := range want {
		if f.Samples[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], f.Samples[i])
		}
	}
}

func TestNanoCounter(t *testing.T) {
	c := NewNanoCounter()
	if c.CyclesPerMicrosecond() != 1000 {
		t.Errorf("CyclesPerMicrosecond: got %d, want 1000", c.CyclesPerMicrosecond())
	}
	a := c.Cycles()
	time.Sleep(time.Millisecond)
	b := c.Cycles()
	if b-a < 1_000_000 {
		t.Errorf("expected at least 1ms of cycles, got %d", b-a)
	}
}
