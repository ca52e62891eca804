package printer

import (
	"bytes"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	LF  = 0x0A
)

const (
	maxBeeps    = 9
	maxBeepUnit = 9 // one unit is about 50ms on Epson-compatible buzzers
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf bytes.Buffer
}

// NewDocument starts a stream with the initialize command.
func NewDocument() *Document {
	d := &Document{}
	d.Init()
	return d
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Beep sounds the buzzer times times for units*50ms each (ESC B n t).
// Both values are clamped to 1..9.
func (d *Document) Beep(times, units int) *Document {
	d.buf.Write([]byte{ESC, 'B', clamp(times, maxBeeps), clamp(units, maxBeepUnit)})
	return d
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// Bytes returns the accumulated stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func clamp(n, hi int) byte {
	if n < 1 {
		return 1
	}
	if n > hi {
		return byte(hi)
	}
	return byte(n)
}
