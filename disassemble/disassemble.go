// Package disassemble implements a disassembler for 6502/65C02/R65C02
// opcodes. Rather than keep a second, necessarily-duplicated opcode table
// the way jmchacon-6502/disassemble/disassemble.go's standalone switch
// does, this formats directly off cpu.Lookup so the two packages can never
// drift out of sync on mnemonic, mode or instruction length.
package disassemble

import (
	"fmt"

	"github.com/wdrummond/go6502/cpu"
	"github.com/wdrummond/go6502/memory"
)

// Step disassembles the instruction at pc, returning its text form and the
// number of bytes (1-3) the caller should advance PC by to reach the next
// instruction. It does not interpret branches/jumps; a JMP operand is
// printed as a bare address, never followed. This always reads up to two
// bytes past pc, so callers must ensure that much of the address space is
// valid to read even near the end of a loaded image.
func Step(pc uint16, mem *memory.Memory, variant cpu.Variant) (string, int) {
	op := mem.Read(pc)
	mnemonic, mode, length, ok := cpu.Lookup(variant, op)
	if !ok {
		return fmt.Sprintf("??? (%#02x)", op), 1
	}

	b1 := mem.Read(pc + 1)
	b2 := mem.Read(pc + 2)

	var operand string
	switch mode {
	case cpu.Implied, cpu.Accumulator:
		operand = ""
	case cpu.Immediate:
		operand = fmt.Sprintf("#$%02X", b1)
	case cpu.ZeroPage:
		operand = fmt.Sprintf("$%02X", b1)
	case cpu.ZeroPageX:
		operand = fmt.Sprintf("$%02X,X", b1)
	case cpu.ZeroPageY:
		operand = fmt.Sprintf("$%02X,Y", b1)
	case cpu.ZeroPageIndirect:
		operand = fmt.Sprintf("($%02X)", b1)
	case cpu.Relative:
		target := uint16(int32(pc+2) + int32(int8(b1)))
		operand = fmt.Sprintf("$%04X", target)
	case cpu.Absolute:
		operand = fmt.Sprintf("$%02X%02X", b2, b1)
	case cpu.AbsoluteX:
		operand = fmt.Sprintf("$%02X%02X,X", b2, b1)
	case cpu.AbsoluteY:
		operand = fmt.Sprintf("$%02X%02X,Y", b2, b1)
	case cpu.Indirect:
		operand = fmt.Sprintf("($%02X%02X)", b2, b1)
	case cpu.AbsoluteIndexedIndirect:
		operand = fmt.Sprintf("($%02X%02X,X)", b2, b1)
	case cpu.IndirectX:
		operand = fmt.Sprintf("($%02X,X)", b1)
	case cpu.IndirectY:
		operand = fmt.Sprintf("($%02X),Y", b1)
	}

	if mode == cpu.Accumulator {
		operand = "A"
	}

	if mnemonic == "BBR" || mnemonic == "BBS" {
		// Three-byte form: zero page operand plus a trailing relative
		// offset whose target isn't captured by cpu.Lookup's mode/length
		// alone, so format it specially here.
		target := uint16(int32(pc+3) + int32(int8(b2)))
		operand = fmt.Sprintf("$%02X,$%04X", b1, target)
	}

	if operand == "" {
		return mnemonic, length
	}
	return fmt.Sprintf("%s %s", mnemonic, operand), length
}
