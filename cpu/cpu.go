// Package cpu implements an instruction-level, cycle-accurate NMOS 6502,
// CMOS 65C02 and Rockwell R65C02 core. Unlike jmchacon-6502/cpu, which
// steps one clock phase at a time via Tick/TickDone, this core executes an
// entire instruction atomically per ExecuteOne call and simply reports the
// cycle count it consumed — the bus-level phase stepping that package
// exposes is not reproduced here.
package cpu

import (
	"fmt"

	"github.com/wdrummond/go6502/irq"
	"github.com/wdrummond/go6502/memory"
)

// Variant selects which opcode table and ALU quirks a CPU runs with.
type Variant int

const (
	// NMOS is the original 6502: undocumented opcodes are a hard decode
	// failure, and decimal-mode ADC/SBC leave N/Z/V computed from the
	// binary intermediate result rather than the corrected BCD result.
	NMOS Variant = iota
	// CMOS is the 65C02: adds BRA/PHX/PHY/PLX/PLY/STZ/TRB/TSB, ZP-indirect
	// addressing, fixes the indirect-JMP page-boundary bug, and treats
	// every opcode byte the NMOS table leaves undocumented as an explicit
	// one-byte NOP rather than a decode failure. Decimal-mode flags are
	// computed from the corrected BCD result.
	CMOS
	// RCMOS is the Rockwell R65C02: CMOS plus BBR0-7/BBS0-7/RMB0-7/SMB0-7.
	RCMOS
)

// Status flag bit masks, named after jmchacon-6502/cpu.go's P_* constants.
const (
	PNegative  = 0x80
	POverflow  = 0x40
	PUnused    = 0x20 // always read as 1; the 6502 has no bit-5 flag
	PBreak     = 0x10
	PDecimal   = 0x08
	PInterrupt = 0x04
	PZero      = 0x02
	PCarry     = 0x01
)

// Interrupt and reset vector addresses.
const (
	NMIVector   = 0xFFFA
	ResetVector = 0xFFFC
	IRQVector   = 0xFFFE
)

// InitialSP is the stack pointer value PowerOn sets. PowerOn does not
// simulate the three phantom pushes of a real reset sequence; Reset does,
// by lowering SP by 3 without writing.
const InitialSP = 0xFF

// InvalidOpcode is returned by ExecuteOne when the byte at PC does not
// decode on the CPU's variant. On NMOS this covers the entire undocumented
// opcode space; on CMOS/RCMOS every opcode byte decodes (to a real
// instruction or an explicit NOP), so this variant never arises there.
type InvalidOpcode struct {
	PC     uint16
	Opcode uint8
}

func (e *InvalidOpcode) Error() string {
	return fmt.Sprintf("cpu: invalid opcode %#02x at PC %#04x", e.Opcode, e.PC)
}

// Halted is returned by ExecuteOne once the CPU has reached a configured
// halt address or the loop detector has fired. It is not a decode or
// execution error; it is the defined way this core reports "nothing left
// to usefully execute" to a caller driving ExecuteOne in a loop.
type Halted struct {
	PC     uint16
	Reason string
}

func (e *Halted) Error() string {
	return fmt.Sprintf("cpu: halted at PC %#04x: %s", e.PC, e.Reason)
}

// CPU is the register file and execution engine for one 6502-family chip.
// One struct serves all three variants: Variant and the opcode table
// pointer it selects are the only things that change between them, per
// the single-struct-with-variant-tag design this module commits to rather
// than three duplicated engines.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	Variant Variant
	opcodes *[256]opcode

	Mem *memory.Memory

	IRQ irq.Sender
	NMI irq.Sender

	haltAddr    *uint16
	loopDetect  bool
	lastPC      uint16
	lastPCCount int

	used     int
	expected int

	debug bool
}

// Def configures a new CPU: its variant, the memory it executes against,
// and the interrupt sources (either may be nil if unused), mirroring
// jmchacon-6502's ChipDef/Init constructor pair.
type Def struct {
	Variant Variant
	Mem     *memory.Memory
	IRQ     irq.Sender
	NMI     irq.Sender
}

// Init constructs a CPU from def and runs PowerOn, the same two-step shape
// jmchacon-6502/cpu.Init follows.
func Init(def *Def) (*CPU, error) {
	if def.Mem == nil {
		return nil, fmt.Errorf("cpu: Def.Mem must not be nil")
	}
	c := &CPU{
		Variant: def.Variant,
		Mem:     def.Mem,
		IRQ:     def.IRQ,
		NMI:     def.NMI,
		opcodes: tableFor(def.Variant),
	}
	c.PowerOn()
	return c, nil
}

// PowerOn resets registers to their documented post-reset state and
// vectors PC through ResetVector. SP is left at InitialSP rather than
// simulating the three phantom stack pushes a real reset performs, since
// nothing downstream depends on the three transient (unwritten) bus
// values those pushes would expose.
func (c *CPU) PowerOn() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = InitialSP
	c.P = PUnused | PInterrupt
	c.PC = c.Mem.ReadWord(ResetVector)
	c.used, c.expected = 0, 0
	c.lastPC, c.lastPCCount = 0, 0
}

// Reset runs a 65xx RESET sequence rather than a cold power-on: it lowers
// SP by 3 for the three phantom pushes, sets I, clears D and re-vectors PC
// through ResetVector. A, X and Y are left as they are.
func (c *CPU) Reset() {
	c.PC = c.Mem.ReadWord(ResetVector)
	c.SP -= 3
	c.SetFlag(PInterrupt, true)
	c.SetFlag(PDecimal, false)
}

// TestReset puts the CPU directly into a known (pc, sp) state, the
// shortcut test fixtures need instead of constructing a ROM image with a
// reset vector just to exercise one instruction.
func (c *CPU) TestReset(pc uint16, sp uint8) {
	c.PC = pc
	c.SP = sp
	c.P = PUnused
}

// SetHaltAddress arms a halt: ExecuteOne returns a Halted error instead of
// decoding once PC reaches addr. A nil haltAddr (the zero value) means no
// halt address is armed.
func (c *CPU) SetHaltAddress(addr uint16) {
	a := addr
	c.haltAddr = &a
}

// ClearHaltAddress disarms any previously configured halt address.
func (c *CPU) ClearHaltAddress() {
	c.haltAddr = nil
}

// EnableLoopDetection arms a trivial infinite-loop detector: the third
// step in a row whose PC equals the previous step's PC (a branch or jump
// to itself, e.g. "loop: JMP loop") is reported via Halted instead of
// being executed, rather than spun on forever.
func (c *CPU) EnableLoopDetection() { c.loopDetect = true }

// SetDebug toggles verbose per-instruction tracing via ExecuteOne.
func (c *CPU) SetDebug(d bool) { c.debug = d }

// TraceOne prints the instruction at PC before stepping over it via
// ExecuteOne, a one-shot version of leaving SetDebug(true) on for an entire
// run.
func (c *CPU) TraceOne() (used, expected int, err error) {
	prev := c.debug
	c.debug = true
	used, expected, err = c.ExecuteOne()
	c.debug = prev
	return
}

// GetFlag reports whether every bit in mask is set in P.
func (c *CPU) GetFlag(mask uint8) bool {
	return c.P&mask == mask
}

// SetFlag sets or clears every bit in mask in P.
func (c *CPU) SetFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

func (c *CPU) zeroCheck(val uint8) {
	c.SetFlag(PZero, val == 0)
}

func (c *CPU) negativeCheck(val uint8) {
	c.SetFlag(PNegative, val&0x80 != 0)
}

func (c *CPU) carryCheck(val uint16) {
	c.SetFlag(PCarry, val > 0xFF)
}

func (c *CPU) overflowCheck(a, b, result uint8) {
	c.SetFlag(POverflow, (a^result)&(b^result)&0x80 != 0)
}

// UsedCycles returns the cycle count actually consumed by the most recent
// ExecuteOne.
func (c *CPU) UsedCycles() int { return c.used }

// ExpectedCycles returns the cycle count the most recent ExecuteOne was
// expected to take: the opcode's base count plus whatever page-cross and
// branch-taken penalties its addressing mode and outcome call for, computed
// independently of UsedCycles. The two always agree in this core — there is
// no sub-cycle bus contention for them to diverge on — which makes
// UsedCycles() == ExpectedCycles() a standing invariant callers (and tests)
// can rely on to catch a cycle-accounting bug rather than a real divergence.
func (c *CPU) ExpectedCycles() int { return c.expected }

// RaiseIRQ asserts the IRQ source when it is an *irq.Level, the same as
// calling Raise on that latch directly. With no IRQ source, or a source of
// another type, it does nothing.
func (c *CPU) RaiseIRQ() {
	if l, ok := c.IRQ.(*irq.Level); ok {
		l.Raise()
	}
}

// RaiseNMI is RaiseIRQ's NMI counterpart: it arms the edge latch if one was
// supplied as NMI. Safe to call from a goroutine other than the one driving
// ExecuteOne — the latch itself is the only cross-thread contact surface.
func (c *CPU) RaiseNMI() {
	if e, ok := c.NMI.(*irq.Edge); ok {
		e.Raise()
	}
}

// PendingIRQ reports whether the configured IRQ source is currently raised,
// irrespective of whether the I flag would mask it.
func (c *CPU) PendingIRQ() bool {
	return c.IRQ != nil && c.IRQ.Raised()
}

// PendingNMI reports whether the configured NMI source is currently armed.
func (c *CPU) PendingNMI() bool {
	return c.NMI != nil && c.NMI.Raised()
}

// SetResetVector writes addr, little-endian, at ResetVector — useful for
// tests and debuggers that want to retarget RESET without hand-poking two
// bytes of memory themselves.
func (c *CPU) SetResetVector(addr uint16) {
	c.Mem.Write(ResetVector, uint8(addr))
	c.Mem.Write(ResetVector+1, uint8(addr>>8))
}

// SetInterruptVector writes addr, little-endian, at IRQVector, the vector
// shared by both a hardware IRQ and a software BRK.
func (c *CPU) SetInterruptVector(addr uint16) {
	c.Mem.Write(IRQVector, uint8(addr))
	c.Mem.Write(IRQVector+1, uint8(addr>>8))
}

// push writes val to the stack page and decrements SP, wrapping within
// page 1 the way real stack hardware does (SP never leaves 0x100-0x1FF).
func (c *CPU) push(val uint8) {
	c.Mem.Write(0x0100+uint16(c.SP), val)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.Mem.Read(0x0100 + uint16(c.SP))
}

func (c *CPU) pushWord(val uint16) {
	c.push(uint8(val >> 8))
	c.push(uint8(val))
}

func (c *CPU) popWord() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

// serviceInterrupt runs the shared 7-cycle NMI/IRQ/BRK vectoring sequence:
// push PC, push P (with B/unused set per source), set I, vector PC. brk
// distinguishes a software BRK (B flag pushed set) from a hardware NMI/IRQ
// (B flag pushed clear).
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.pushWord(c.PC)
	p := c.P | PUnused
	if brk {
		p |= PBreak
	} else {
		p &^= PBreak
	}
	c.push(p)
	c.SetFlag(PInterrupt, true)
	c.PC = c.Mem.ReadWord(vector)
}

// checkInterrupts services a pending NMI or (if unmasked) IRQ ahead of the
// next instruction fetch, matching the priority RESET > NMI > IRQ > BRK:
// NMI is edge-triggered and always taken once latched; IRQ is level-
// triggered and masked by the I flag.
func (c *CPU) checkInterrupts() bool {
	if c.NMI != nil && c.NMI.Raised() {
		if e, ok := c.NMI.(*irq.Edge); ok {
			e.Service()
		}
		c.serviceInterrupt(NMIVector, false)
		c.used, c.expected = 7, 7
		return true
	}
	if c.IRQ != nil && c.IRQ.Raised() && !c.GetFlag(PInterrupt) {
		c.serviceInterrupt(IRQVector, false)
		c.used, c.expected = 7, 7
		return true
	}
	return false
}

// ExecuteOne either services a pending interrupt (a 7-cycle step of its
// own, with no instruction executed) or fetches, decodes and executes
// exactly one instruction, returning the cycles it consumed as
// both used and expected (equal here since this core has no sub-cycle bus
// contention to diverge on). A halt address or the loop detector firing
// returns a *Halted; an undecodable NMOS opcode returns an *InvalidOpcode.
func (c *CPU) ExecuteOne() (used, expected int, err error) {
	if c.haltAddr != nil && c.PC == *c.haltAddr {
		return 0, 0, &Halted{PC: c.PC, Reason: "halt address reached"}
	}
	if c.checkInterrupts() {
		return c.used, c.expected, nil
	}
	if c.loopDetect {
		if c.PC == c.lastPC {
			c.lastPCCount++
			if c.lastPCCount > 2 {
				return 0, 0, &Halted{PC: c.PC, Reason: "loop detected"}
			}
		} else {
			c.lastPCCount = 0
		}
		c.lastPC = c.PC
	}

	pc := c.PC
	op := c.Mem.Read(pc)
	oc := c.opcodes[op]
	if oc.fn == nil {
		return 0, 0, &InvalidOpcode{PC: pc, Opcode: op}
	}
	if c.debug {
		fmt.Printf("%04X: %02X %s\n", pc, op, oc.mnemonic)
	}

	c.PC++
	addr, pageCrossed, isAcc := c.resolveAddress(oc.mode)
	extra := oc.fn(c, oc.mode, addr, isAcc)

	penalty := 0
	if oc.pageCross && pageCrossed {
		penalty++
	}
	// used and expected are computed from the same base+penalty+extra recipe
	// rather than one being copied from the other, so a future change that
	// makes them diverge (e.g. a stall this core doesn't yet model) shows up
	// as two different call sites to update instead of a tautology.
	c.used = oc.cycles + penalty + extra
	c.expected = oc.cycles + penalty + extra
	return c.used, c.expected, nil
}

// Execute repeatedly calls ExecuteOne until it returns a *Halted or a
// non-nil error. total is the summed cycle count across every successful
// step.
func (c *CPU) Execute() (total int, err error) {
	for {
		used, _, err := c.ExecuteOne()
		total += used
		if err != nil {
			return total, err
		}
	}
}
