package timer

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewRejectsZeroDuration(t *testing.T) {
	_, err := New(NewFakeClock(0), 0)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewRejectsNilClock(t *testing.T) {
	_, err := New(nil, 10)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFirstCheckArms(t *testing.T) {
	clk := NewFakeClock(1000)
	tm, err := New(clk, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Running() {
		t.Error("new timer should not be running")
	}

	// Even with a large jump before the first check, arming never expires.
	clk.Advance(10000)
	if tm.Check() {
		t.Error("first check should never report expiry")
	}
	if !tm.Running() {
		t.Error("first check should arm the timer")
	}
}

func TestExpiresExactlyOnce(t *testing.T) {
	clk := NewFakeClock(0)
	tm, _ := New(clk, 40)

	tm.Check()
	clk.Advance(40)

	if !tm.Check() {
		t.Fatal("expected expiry at exactly the duration")
	}
	if tm.Running() {
		t.Error("expiry should disarm the timer")
	}
	if tm.Check() {
		t.Error("check after expiry should re-arm, not expire")
	}
	if !tm.Running() {
		t.Error("check after expiry should arm a new window")
	}
}

func TestNotExpiredBeforeDuration(t *testing.T) {
	clk := NewFakeClock(0)
	tm, _ := New(clk, 40)

	tm.Check()
	for i := 0; i < 39; i++ {
		clk.Advance(1)
		if tm.Check() {
			t.Fatalf("expired early at %dms", clk.Ms)
		}
		if !tm.Running() {
			t.Fatalf("disarmed early at %dms", clk.Ms)
		}
	}
	clk.Advance(1)
	if !tm.Check() {
		t.Error("expected expiry at 40ms")
	}
}

func TestWraparound(t *testing.T) {
	clk := NewFakeClock(math.MaxUint32 - 10)
	tm, _ := New(clk, 40)

	tm.Check()
	clk.Advance(30) // wraps past zero
	if tm.Check() {
		t.Error("should not expire 30ms into a 40ms window across wraparound")
	}
	clk.Advance(10)
	if !tm.Check() {
		t.Error("should expire 40ms into the window across wraparound")
	}
}

func TestSetKeepsWindow(t *testing.T) {
	clk := NewFakeClock(0)
	tm, _ := New(clk, 100)

	tm.Check()
	clk.Advance(50)

	if err := tm.Set(60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tm.Running() {
		t.Error("Set should not disarm")
	}
	if tm.Duration() != 60 {
		t.Errorf("Duration: got %d, want 60", tm.Duration())
	}

	clk.Advance(10)
	if !tm.Check() {
		t.Error("next comparison should use the new duration from the original start")
	}
}

func TestSetRejectsZero(t *testing.T) {
	tm, _ := New(NewFakeClock(0), 100)
	if err := tm.Set(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if tm.Duration() != 100 {
		t.Errorf("Duration changed on rejected Set: %d", tm.Duration())
	}
}

func TestStopRestartsWindow(t *testing.T) {
	clk := NewFakeClock(0)
	tm, _ := New(clk, 100)

	tm.Check()
	clk.Advance(90)
	tm.Stop()

	if tm.Check() {
		t.Error("check after Stop should arm, not expire")
	}
	clk.Advance(90)
	if tm.Check() {
		t.Error("window should restart from Stop")
	}
	clk.Advance(10)
	if !tm.Check() {
		t.Error("expected expiry 100ms after re-arm")
	}
}

func TestSystemClockAdvances(t *testing.T) {
	c := NewSystemClock()
	a := c.NowMs()
	time.Sleep(5 * time.Millisecond)
	b := c.NowMs()
	if b-a < 5 {
		t.Errorf("expected at least 5ms elapsed, got %d", b-a)
	}
}
