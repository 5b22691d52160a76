package lcd

import "strings"

// Recorder is an in-memory display for tests. It keeps a text buffer per row
// and counts the calls made to it.
type Recorder struct {
	Rows      []string
	Backlight bool

	Clears         int
	BacklightCalls []bool

	// Err, if set, is returned by every call.
	Err error

	col, row int
}

// NewRecorder creates a Recorder with rows empty rows.
func NewRecorder(rows int) *Recorder {
	return &Recorder{Rows: make([]string, rows)}
}

// Clear empties every row and homes the cursor.
func (r *Recorder) Clear() error {
	if r.Err != nil {
		return r.Err
	}
	for i := range r.Rows {
		r.Rows[i] = ""
	}
	r.col, r.row = 0, 0
	r.Clears++
	return nil
}

// Home moves the cursor to 0,0.
func (r *Recorder) Home() error {
	if r.Err != nil {
		return r.Err
	}
	r.col, r.row = 0, 0
	return nil
}

// SetCursor moves the cursor.
func (r *Recorder) SetCursor(col, row int) error {
	if r.Err != nil {
		return r.Err
	}
	r.col, r.row = col, row
	return nil
}

// Print writes s at the cursor, padding the row with spaces if needed.
func (r *Recorder) Print(s string) error {
	if r.Err != nil {
		return r.Err
	}
	line := r.Rows[r.row]
	if len(line) < r.col {
		line += strings.Repeat(" ", r.col-len(line))
	}
	end := r.col + len(s)
	if end < len(line) {
		line = line[:r.col] + s + line[end:]
	} else {
		line = line[:r.col] + s
	}
	r.Rows[r.row] = line
	r.col = end
	return nil
}

// SetBacklight records the backlight state.
func (r *Recorder) SetBacklight(on bool) error {
	if r.Err != nil {
		return r.Err
	}
	r.Backlight = on
	r.BacklightCalls = append(r.BacklightCalls, on)
	return nil
}
