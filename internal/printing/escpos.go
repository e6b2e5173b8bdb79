// Package printing renders receipts and tickets as ESC/POS jobs, drives the receipt printer
// and the pole display, and talks to the local printer agent over HTTP.
package printing

import "bytes"

// ESC/POS control bytes
const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// Alignment values for Align
const (
	AlignLeft   byte = 0
	AlignCenter byte = 1
	AlignRight  byte = 2
)

// Builder accumulates an ESC/POS job.
type Builder struct {
	buf bytes.Buffer
}

// NewBuilder starts a job with the printer reset.
func NewBuilder() *Builder {
	b := &Builder{}
	b.buf.Write([]byte{esc, '@'})
	return b
}

func (b *Builder) Align(a byte) *Builder {
	b.buf.Write([]byte{esc, 'a', a})
	return b
}

func (b *Builder) Bold(on bool) *Builder {
	var v byte
	if on {
		v = 1
	}
	b.buf.Write([]byte{esc, 'E', v})
	return b
}

// Line writes one line of text followed by a line feed.
func (b *Builder) Line(s string) *Builder {
	b.buf.WriteString(s)
	b.buf.WriteByte(lf)
	return b
}

func (b *Builder) Feed(n int) *Builder {
	b.buf.Write([]byte{esc, 'd', byte(n)})
	return b
}

// QR prints data as a QR code (GS ( k, model 2, error correction M).
func (b *Builder) QR(data string, size byte) *Builder {
	if size < 1 || size > 16 {
		size = 6
	}
	// model 2
	b.buf.Write([]byte{gs, '(', 'k', 4, 0, '1', 'A', '2', 0})
	// module size
	b.buf.Write([]byte{gs, '(', 'k', 3, 0, '1', 'C', size})
	// error correction M
	b.buf.Write([]byte{gs, '(', 'k', 3, 0, '1', 'E', '1'})

	n := len(data) + 3
	b.buf.Write([]byte{gs, '(', 'k', byte(n % 256), byte(n / 256), '1', 'P', '0'})
	b.buf.WriteString(data)
	// print
	b.buf.Write([]byte{gs, '(', 'k', 3, 0, '1', 'Q', '0'})
	return b
}

// Cut feeds past the tear bar and does a partial cut.
func (b *Builder) Cut() *Builder {
	b.buf.Write([]byte{gs, 'V', 'B', 3})
	return b
}

func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}
