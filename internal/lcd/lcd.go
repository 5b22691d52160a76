// Package lcd drives an HD44780 character LCD through a PCF8574 I2C
// backpack in 4-bit mode. It only formats commands and ships bytes; what to
// show is decided by the caller.
package lcd

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
)

// DefaultAddress is the usual PCF8574 backpack address.
const DefaultAddress = 0x27

// HD44780 commands.
const (
	cmdClearDisplay   = 0x01
	cmdReturnHome     = 0x02
	cmdEntryModeSet   = 0x04
	cmdDisplayControl = 0x08
	cmdFunctionSet    = 0x20
	cmdSetDDRAMAddr   = 0x80

	entryLeft     = 0x02
	displayOn     = 0x04
	mode4Bit      = 0x00
	twoLine       = 0x08
	font5x8       = 0x00
	initNibble8   = 0x30
	initNibble4   = 0x20
	displayOffCmd = cmdDisplayControl
)

// PCF8574 pin mapping.
const (
	bitRS        = 0x01
	bitEnable    = 0x04
	bitBacklight = 0x08
)

var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// Config describes the panel geometry.
type Config struct {
	Cols int
	Rows int
	// Sleep is used for controller delays; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Display is an HD44780 behind a PCF8574.
type Display struct {
	conn      conn.Conn
	cols      int
	rows      int
	backlight byte
	sleep     func(time.Duration)
}

// New initializes the controller in 4-bit, two-line mode with the backlight on.
func New(c conn.Conn, cfg Config) (*Display, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 || cfg.Rows > len(rowOffsets) {
		return nil, fmt.Errorf("lcd: invalid geometry %dx%d", cfg.Cols, cfg.Rows)
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	d := &Display{
		conn:      c,
		cols:      cfg.Cols,
		rows:      cfg.Rows,
		backlight: bitBacklight,
		sleep:     cfg.Sleep,
	}
	if err := d.init(); err != nil {
		return nil, fmt.Errorf("lcd: init: %w", err)
	}
	return d, nil
}

func (d *Display) init() error {
	d.sleep(50 * time.Millisecond)

	// Three 8-bit function sets, then switch to 4-bit.
	for _, wait := range []time.Duration{4500 * time.Microsecond, 4500 * time.Microsecond, 150 * time.Microsecond} {
		if err := d.writeNibble(initNibble8, 0); err != nil {
			return err
		}
		d.sleep(wait)
	}
	if err := d.writeNibble(initNibble4, 0); err != nil {
		return err
	}

	for _, cmd := range []byte{
		cmdFunctionSet | mode4Bit | twoLine | font5x8,
		displayOffCmd,
		cmdClearDisplay,
		cmdEntryModeSet | entryLeft,
		cmdDisplayControl | displayOn,
	} {
		if err := d.command(cmd); err != nil {
			return err
		}
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// Clear blanks the display.
func (d *Display) Clear() error {
	if err := d.command(cmdClearDisplay); err != nil {
		return fmt.Errorf("lcd: clear: %w", err)
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// Home moves the cursor to the top-left corner.
func (d *Display) Home() error {
	if err := d.command(cmdReturnHome); err != nil {
		return fmt.Errorf("lcd: home: %w", err)
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// SetCursor moves the cursor to col, row (zero based).
func (d *Display) SetCursor(col, row int) error {
	if col < 0 || col >= d.cols || row < 0 || row >= d.rows {
		return fmt.Errorf("lcd: cursor %d,%d outside %dx%d", col, row, d.cols, d.rows)
	}
	if err := d.command(cmdSetDDRAMAddr | (byte(col) + rowOffsets[row])); err != nil {
		return fmt.Errorf("lcd: set cursor: %w", err)
	}
	return nil
}

// Print writes s at the cursor. Only ASCII is meaningful to the controller.
func (d *Display) Print(s string) error {
	for i := 0; i < len(s); i++ {
		if err := d.send(s[i], bitRS); err != nil {
			return fmt.Errorf("lcd: print: %w", err)
		}
	}
	return nil
}

// SetBacklight switches the backlight.
func (d *Display) SetBacklight(on bool) error {
	d.backlight = 0
	if on {
		d.backlight = bitBacklight
	}
	if err := d.conn.Tx([]byte{d.backlight}, nil); err != nil {
		return fmt.Errorf("lcd: backlight: %w", err)
	}
	return nil
}

// Backlight reports whether the backlight is on.
func (d *Display) Backlight() bool {
	return d.backlight != 0
}

func (d *Display) command(cmd byte) error {
	return d.send(cmd, 0)
}

func (d *Display) send(value, mode byte) error {
	if err := d.writeNibble(value&0xF0, mode); err != nil {
		return err
	}
	return d.writeNibble(value<<4, mode)
}

// writeNibble latches the high four bits of nibble by pulsing enable.
func (d *Display) writeNibble(nibble, mode byte) error {
	b := nibble&0xF0 | mode | d.backlight
	if err := d.conn.Tx([]byte{b | bitEnable, b}, nil); err != nil {
		return err
	}
	d.sleep(50 * time.Microsecond)
	return nil
}
