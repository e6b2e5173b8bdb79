package printing

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// DisplayColumns is the width of one line of the two-line pole display.
const DisplayColumns = 20

// PD300 command bytes
var (
	displayInit  = []byte{0x1B, 0x40}
	displayClear = []byte{0x0C}
	displayHome  = []byte{0x0B}
	// US $ x y: cursor to column 1 of line 2
	displayLine2 = []byte{0x1F, 0x24, 0x01, 0x02}
)

// DisplayFrame builds the bytes that show two lines on the pole display.
func DisplayFrame(line1, line2 string) []byte {
	var b []byte
	b = append(b, displayInit...)
	b = append(b, displayClear...)
	b = append(b, displayHome...)
	b = append(b, padDisplay(line1)...)
	b = append(b, displayLine2...)
	b = append(b, padDisplay(line2)...)
	return b
}

func padDisplay(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return '?'
		}
		return r
	}, s)
	s = fit(s, DisplayColumns)
	return s + strings.Repeat(" ", DisplayColumns-utf8.RuneCountInString(s))
}

// OpenPort opens a serial port. It is serial.Open unless a test swaps it.
type OpenPort func(device string, mode *serial.Mode) (io.WriteCloser, error)

func openSerial(device string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(device, mode)
}

// Display writes frames to the serial port of a pole display.
type Display struct {
	Device   string
	BaudRate int
	Open     OpenPort
}

// NewDisplay returns a display on device at the given baud rate, 8N1.
func NewDisplay(device string, baud int) *Display {
	return &Display{Device: device, BaudRate: baud, Open: openSerial}
}

func (d *Display) mode() *serial.Mode {
	baud := d.BaudRate
	if baud == 0 {
		baud = 9600
	}
	return &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
}

// Show writes the two lines to the device.
func (d *Display) Show(line1, line2 string) error {
	if d.Device == "" {
		return errors.New("no display device configured")
	}
	open := d.Open
	if open == nil {
		open = openSerial
	}
	port, err := open(d.Device, d.mode())
	if err != nil {
		return errors.Wrap(err, "open display port")
	}
	defer port.Close()

	_, err = port.Write(DisplayFrame(line1, line2))
	return errors.Wrap(err, "write display frame")
}
