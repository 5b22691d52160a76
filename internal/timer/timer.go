// Package timer provides a non-blocking elapsed-time check built on a wrapping
// millisecond clock. It is the scheduling substrate for the debounce and
// application state machines: nothing here sleeps.
package timer

import "errors"

// ErrInvalidArgument is returned for a nil clock or a zero duration.
var ErrInvalidArgument = errors.New("timer: invalid argument")

// Timer reports, once per window, that a duration has elapsed.
//
// The first Check after New (or after an expiry) only arms the window and
// returns false. Later calls return true exactly once when the duration has
// elapsed, disarming the timer so the next Check starts a new window.
type Timer struct {
	clock    Clock
	start    uint32
	duration uint32
	running  bool
}

// New creates a disarmed timer with the given duration in milliseconds.
func New(clock Clock, durationMs uint32) (*Timer, error) {
	if clock == nil || durationMs == 0 {
		return nil, ErrInvalidArgument
	}
	return &Timer{clock: clock, duration: durationMs}, nil
}

// Check arms the timer if it is not running, otherwise reports whether the
// window has elapsed. Elapsed time is computed with unsigned subtraction so a
// clock wraparound inside the window is harmless.
func (t *Timer) Check() bool {
	now := t.clock.NowMs()
	if !t.running {
		t.running = true
		t.start = now
		return false
	}
	if now-t.start >= t.duration {
		t.running = false
		return true
	}
	return false
}

// Set changes the duration. A running window keeps its start time; the next
// comparison uses the new value.
func (t *Timer) Set(durationMs uint32) error {
	if durationMs == 0 {
		return ErrInvalidArgument
	}
	t.duration = durationMs
	return nil
}

// Stop disarms the timer without reporting expiry.
func (t *Timer) Stop() {
	t.running = false
}

// Running reports whether a window is in progress.
func (t *Timer) Running() bool {
	return t.running
}

// Duration returns the configured duration in milliseconds.
func (t *Timer) Duration() uint32 {
	return t.duration
}
