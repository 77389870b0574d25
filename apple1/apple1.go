// Package apple1 implements the memory-mapped keyboard/display hook an
// Apple-1 wires its 6821 PIA up as, grounded on original_source/apple1.h's
// address layout and on the hooked-address-switch style
// jmchacon-6502/pia6532/pia6532.go uses for its own masked-address I/O
// dispatch. It is deliberately thin: no ROM monitor, no raw-mode terminal
// handling, no signal setup — those stay external per this module's scope.
package apple1

import (
	"bufio"
	"io"

	"github.com/wdrummond/go6502/memory"
)

// Memory-mapped register addresses, from original_source/apple1/apple1.h.
const (
	Keyboard        = 0xD010
	KeyboardControl = 0xD011
	Display         = 0xD012
	DisplayControl  = 0xD013
)

// Apple-1 keycodes worth naming, from original_source/apple1/apple1.h.
const (
	CR   = 0x0D
	Bell = 0x0A
)

// PIA emulates the two-register-pair keyboard/display interface: a
// keyboard byte arrives with bit 7 set and the ready flag in the control
// register is cleared by reading the data register, and a display byte written with bit 7 set has its low
// 7 bits emitted to the attached writer.
type PIA struct {
	in  *bufio.Reader
	out io.Writer

	keyData  uint8
	keyReady bool
}

// NewPIA returns a PIA that reads keystrokes from r and writes display
// output to w. Either may be nil to leave that half of the interface
// inert (a keyboard read with nil r always reports not-ready).
func NewPIA(r io.Reader, w io.Writer) *PIA {
	p := &PIA{out: w}
	if r != nil {
		p.in = bufio.NewReader(r)
	}
	return p
}

// Attach maps the PIA's four registers into mem as HookedIO, the design
// note spec.md's §9 calls for: the core never references PIA directly,
// only the read/write closures Attach binds.
func (p *PIA) Attach(mem *memory.Memory) error {
	return mem.MapIO(Keyboard, DisplayControl, p.read, p.write)
}

func (p *PIA) read(addr uint16) uint8 {
	switch addr {
	case Keyboard:
		p.fill()
		if !p.keyReady {
			return 0
		}
		val := 0x80 | p.keyData
		p.keyReady = false
		return val
	case KeyboardControl:
		p.fill()
		if p.keyReady {
			return 0x80
		}
		return 0
	case Display:
		return 0
	case DisplayControl:
		// Always ready for the next byte; this emulation has no output
		// buffering to report back pressure on.
		return 0x80
	}
	return 0
}

func (p *PIA) write(addr uint16, val uint8) {
	switch addr {
	case Keyboard, KeyboardControl:
		// Read-only from the CPU's perspective.
	case Display:
		if p.out != nil && val&0x80 != 0 {
			p.out.Write([]byte{val & 0x7F})
		}
	case DisplayControl:
		// Not writable on real hardware either.
	}
}

// fill pulls one pending byte from the input reader if the keyboard latch
// is currently empty, servicing the "bit 7 set, cleared on data read"
// contract lazily rather than requiring a separate pump goroutine.
func (p *PIA) fill() {
	if p.keyReady || p.in == nil {
		return
	}
	b, err := p.in.ReadByte()
	if err != nil {
		return
	}
	p.keyData = b
	p.keyReady = true
}
