package cpu

// opcodeFn is the shape every instruction handler implements: operate on
// c using the already-resolved address/accumulator-flag pair, and return
// any cycles beyond the table's base count the instruction consumed
// (branches, for taken/page-crossed adjustments, and ADC/SBC, for the
// CMOS/R65C02 decimal-mode cycle).
type opcodeFn func(c *CPU, mode AddrMode, addr uint16, isAcc bool) int

// opcode is one entry of the per-variant dispatch table: its addressing
// mode, byte length (informational — PC advancement is driven by
// resolveAddress consuming operand bytes, not this field), base cycle
// count, whether a page-crossing effective address adds a cycle, and the
// handler itself. A nil fn means the opcode byte is undecodable on this
// variant (only possible on NMOS).
type opcode struct {
	mnemonic  string
	mode      AddrMode
	bytes     int
	cycles    int
	pageCross bool
	fn        opcodeFn
}

var nmosTable [256]opcode

func set(t *[256]opcode, op uint8, mnemonic string, mode AddrMode, bytes, cycles int, pageCross bool, fn opcodeFn) {
	t[op] = opcode{mnemonic: mnemonic, mode: mode, bytes: bytes, cycles: cycles, pageCross: pageCross, fn: fn}
}

func init() {
	t := &nmosTable

	set(t, 0xA9, "LDA", Immediate, 2, 2, false, iLDA)
	set(t, 0xA5, "LDA", ZeroPage, 2, 3, false, iLDA)
	set(t, 0xB5, "LDA", ZeroPageX, 2, 4, false, iLDA)
	set(t, 0xAD, "LDA", Absolute, 3, 4, false, iLDA)
	set(t, 0xBD, "LDA", AbsoluteX, 3, 4, true, iLDA)
	set(t, 0xB9, "LDA", AbsoluteY, 3, 4, true, iLDA)
	set(t, 0xA1, "LDA", IndirectX, 2, 6, false, iLDA)
	set(t, 0xB1, "LDA", IndirectY, 2, 5, true, iLDA)

	set(t, 0xA2, "LDX", Immediate, 2, 2, false, iLDX)
	set(t, 0xA6, "LDX", ZeroPage, 2, 3, false, iLDX)
	set(t, 0xB6, "LDX", ZeroPageY, 2, 4, false, iLDX)
	set(t, 0xAE, "LDX", Absolute, 3, 4, false, iLDX)
	set(t, 0xBE, "LDX", AbsoluteY, 3, 4, true, iLDX)

	set(t, 0xA0, "LDY", Immediate, 2, 2, false, iLDY)
	set(t, 0xA4, "LDY", ZeroPage, 2, 3, false, iLDY)
	set(t, 0xB4, "LDY", ZeroPageX, 2, 4, false, iLDY)
	set(t, 0xAC, "LDY", Absolute, 3, 4, false, iLDY)
	set(t, 0xBC, "LDY", AbsoluteX, 3, 4, true, iLDY)

	set(t, 0x85, "STA", ZeroPage, 2, 3, false, iSTA)
	set(t, 0x95, "STA", ZeroPageX, 2, 4, false, iSTA)
	set(t, 0x8D, "STA", Absolute, 3, 4, false, iSTA)
	set(t, 0x9D, "STA", AbsoluteX, 3, 5, false, iSTA)
	set(t, 0x99, "STA", AbsoluteY, 3, 5, false, iSTA)
	set(t, 0x81, "STA", IndirectX, 2, 6, false, iSTA)
	set(t, 0x91, "STA", IndirectY, 2, 6, false, iSTA)

	set(t, 0x86, "STX", ZeroPage, 2, 3, false, iSTX)
	set(t, 0x96, "STX", ZeroPageY, 2, 4, false, iSTX)
	set(t, 0x8E, "STX", Absolute, 3, 4, false, iSTX)

	set(t, 0x84, "STY", ZeroPage, 2, 3, false, iSTY)
	set(t, 0x94, "STY", ZeroPageX, 2, 4, false, iSTY)
	set(t, 0x8C, "STY", Absolute, 3, 4, false, iSTY)

	set(t, 0xAA, "TAX", Implied, 1, 2, false, iTAX)
	set(t, 0xA8, "TAY", Implied, 1, 2, false, iTAY)
	set(t, 0x8A, "TXA", Implied, 1, 2, false, iTXA)
	set(t, 0x98, "TYA", Implied, 1, 2, false, iTYA)
	set(t, 0xBA, "TSX", Implied, 1, 2, false, iTSX)
	set(t, 0x9A, "TXS", Implied, 1, 2, false, iTXS)

	set(t, 0x48, "PHA", Implied, 1, 3, false, iPHA)
	set(t, 0x68, "PLA", Implied, 1, 4, false, iPLA)
	set(t, 0x08, "PHP", Implied, 1, 3, false, iPHP)
	set(t, 0x28, "PLP", Implied, 1, 4, false, iPLP)

	for _, e := range []struct {
		base uint8
		fn   opcodeFn
		name string
	}{
		{0x29, iAND, "AND"}, {0x09, iORA, "ORA"}, {0x49, iEOR, "EOR"},
		{0x69, iADC, "ADC"}, {0xE9, iSBC, "SBC"}, {0xC9, iCMP, "CMP"},
	} {
		set(t, e.base, e.name, Immediate, 2, 2, false, e.fn)
		set(t, e.base-0x04, e.name, ZeroPage, 2, 3, false, e.fn)
		set(t, e.base+0x0C, e.name, ZeroPageX, 2, 4, false, e.fn)
		set(t, e.base+0x04, e.name, Absolute, 3, 4, false, e.fn)
		set(t, e.base+0x14, e.name, AbsoluteX, 3, 4, true, e.fn)
		set(t, e.base+0x10, e.name, AbsoluteY, 3, 4, true, e.fn)
		set(t, e.base-0x08, e.name, IndirectX, 2, 6, false, e.fn)
		set(t, e.base+0x08, e.name, IndirectY, 2, 5, true, e.fn)
	}

	set(t, 0x24, "BIT", ZeroPage, 2, 3, false, iBIT)
	set(t, 0x2C, "BIT", Absolute, 3, 4, false, iBIT)

	set(t, 0xE0, "CPX", Immediate, 2, 2, false, iCPX)
	set(t, 0xE4, "CPX", ZeroPage, 2, 3, false, iCPX)
	set(t, 0xEC, "CPX", Absolute, 3, 4, false, iCPX)
	set(t, 0xC0, "CPY", Immediate, 2, 2, false, iCPY)
	set(t, 0xC4, "CPY", ZeroPage, 2, 3, false, iCPY)
	set(t, 0xCC, "CPY", Absolute, 3, 4, false, iCPY)

	set(t, 0xE6, "INC", ZeroPage, 2, 5, false, iINC)
	set(t, 0xF6, "INC", ZeroPageX, 2, 6, false, iINC)
	set(t, 0xEE, "INC", Absolute, 3, 6, false, iINC)
	set(t, 0xFE, "INC", AbsoluteX, 3, 7, false, iINC)
	set(t, 0xC6, "DEC", ZeroPage, 2, 5, false, iDEC)
	set(t, 0xD6, "DEC", ZeroPageX, 2, 6, false, iDEC)
	set(t, 0xCE, "DEC", Absolute, 3, 6, false, iDEC)
	set(t, 0xDE, "DEC", AbsoluteX, 3, 7, false, iDEC)
	set(t, 0xE8, "INX", Implied, 1, 2, false, iINX)
	set(t, 0xC8, "INY", Implied, 1, 2, false, iINY)
	set(t, 0xCA, "DEX", Implied, 1, 2, false, iDEX)
	set(t, 0x88, "DEY", Implied, 1, 2, false, iDEY)

	set(t, 0x0A, "ASL", Accumulator, 1, 2, false, iASL)
	set(t, 0x06, "ASL", ZeroPage, 2, 5, false, iASL)
	set(t, 0x16, "ASL", ZeroPageX, 2, 6, false, iASL)
	set(t, 0x0E, "ASL", Absolute, 3, 6, false, iASL)
	set(t, 0x1E, "ASL", AbsoluteX, 3, 7, false, iASL)
	set(t, 0x4A, "LSR", Accumulator, 1, 2, false, iLSR)
	set(t, 0x46, "LSR", ZeroPage, 2, 5, false, iLSR)
	set(t, 0x56, "LSR", ZeroPageX, 2, 6, false, iLSR)
	set(t, 0x4E, "LSR", Absolute, 3, 6, false, iLSR)
	set(t, 0x5E, "LSR", AbsoluteX, 3, 7, false, iLSR)
	set(t, 0x2A, "ROL", Accumulator, 1, 2, false, iROL)
	set(t, 0x26, "ROL", ZeroPage, 2, 5, false, iROL)
	set(t, 0x36, "ROL", ZeroPageX, 2, 6, false, iROL)
	set(t, 0x2E, "ROL", Absolute, 3, 6, false, iROL)
	set(t, 0x3E, "ROL", AbsoluteX, 3, 7, false, iROL)
	set(t, 0x6A, "ROR", Accumulator, 1, 2, false, iROR)
	set(t, 0x66, "ROR", ZeroPage, 2, 5, false, iROR)
	set(t, 0x76, "ROR", ZeroPageX, 2, 6, false, iROR)
	set(t, 0x6E, "ROR", Absolute, 3, 6, false, iROR)
	set(t, 0x7E, "ROR", AbsoluteX, 3, 7, false, iROR)

	set(t, 0x4C, "JMP", Absolute, 3, 3, false, iJMP)
	set(t, 0x6C, "JMP", Indirect, 3, 5, false, iJMP)
	set(t, 0x20, "JSR", Absolute, 3, 6, false, iJSR)
	set(t, 0x60, "RTS", Implied, 1, 6, false, iRTS)
	set(t, 0x40, "RTI", Implied, 1, 6, false, iRTI)
	set(t, 0x00, "BRK", Implied, 1, 7, false, iBRK)

	set(t, 0x10, "BPL", Relative, 2, 2, false, iBPL)
	set(t, 0x30, "BMI", Relative, 2, 2, false, iBMI)
	set(t, 0x50, "BVC", Relative, 2, 2, false, iBVC)
	set(t, 0x70, "BVS", Relative, 2, 2, false, iBVS)
	set(t, 0x90, "BCC", Relative, 2, 2, false, iBCC)
	set(t, 0xB0, "BCS", Relative, 2, 2, false, iBCS)
	set(t, 0xD0, "BNE", Relative, 2, 2, false, iBNE)
	set(t, 0xF0, "BEQ", Relative, 2, 2, false, iBEQ)

	set(t, 0x18, "CLC", Implied, 1, 2, false, iCLC)
	set(t, 0x38, "SEC", Implied, 1, 2, false, iSEC)
	set(t, 0x58, "CLI", Implied, 1, 2, false, iCLI)
	set(t, 0x78, "SEI", Implied, 1, 2, false, iSEI)
	set(t, 0xB8, "CLV", Implied, 1, 2, false, iCLV)
	set(t, 0xD8, "CLD", Implied, 1, 2, false, iCLD)
	set(t, 0xF8, "SED", Implied, 1, 2, false, iSED)

	set(t, 0xEA, "NOP", Implied, 1, 2, false, iNOP)
}

// applyCMOS applies the 65C02 instructions and overrides on top
// of a copy of nmosTable: the new ZP-indirect addressing forms, BRA,
// STZ/TRB/TSB, PHX/PHY/PLX/PLY, accumulator INC/DEC, the wider BIT, and the
// indirect-JMP fix. resolveAddress (keyed off c.Variant) supplies the
// corrected *behavior*; the cycles:6 override here supplies the extra cycle
// that fix costs over the NMOS table's entry.
func applyCMOS(t *[256]opcode) {
	set(t, 0x72, "ADC", ZeroPageIndirect, 2, 5, false, iADC)
	set(t, 0x32, "AND", ZeroPageIndirect, 2, 5, false, iAND)
	set(t, 0xD2, "CMP", ZeroPageIndirect, 2, 5, false, iCMP)
	set(t, 0x52, "EOR", ZeroPageIndirect, 2, 5, false, iEOR)
	set(t, 0xB2, "LDA", ZeroPageIndirect, 2, 5, false, iLDA)
	set(t, 0x12, "ORA", ZeroPageIndirect, 2, 5, false, iORA)
	set(t, 0xF2, "SBC", ZeroPageIndirect, 2, 5, false, iSBC)
	set(t, 0x92, "STA", ZeroPageIndirect, 2, 5, false, iSTA)

	set(t, 0x80, "BRA", Relative, 2, 3, false, iBRA)

	set(t, 0x64, "STZ", ZeroPage, 2, 3, false, iSTZ)
	set(t, 0x74, "STZ", ZeroPageX, 2, 4, false, iSTZ)
	set(t, 0x9C, "STZ", Absolute, 3, 4, false, iSTZ)
	set(t, 0x9E, "STZ", AbsoluteX, 3, 5, false, iSTZ)

	set(t, 0x14, "TRB", ZeroPage, 2, 5, false, iTRB)
	set(t, 0x1C, "TRB", Absolute, 3, 6, false, iTRB)
	set(t, 0x04, "TSB", ZeroPage, 2, 5, false, iTSB)
	set(t, 0x0C, "TSB", Absolute, 3, 6, false, iTSB)

	set(t, 0xDA, "PHX", Implied, 1, 3, false, iPHX)
	set(t, 0xFA, "PLX", Implied, 1, 4, false, iPLX)
	set(t, 0x5A, "PHY", Implied, 1, 3, false, iPHY)
	set(t, 0x7A, "PLY", Implied, 1, 4, false, iPLY)

	set(t, 0x1A, "INC", Accumulator, 1, 2, false, iINC)
	set(t, 0x3A, "DEC", Accumulator, 1, 2, false, iDEC)

	set(t, 0x89, "BIT", Immediate, 2, 2, false, iBITImm)
	set(t, 0x34, "BIT", ZeroPageX, 2, 4, false, iBIT)
	set(t, 0x3C, "BIT", AbsoluteX, 3, 4, true, iBIT)

	set(t, 0x7C, "JMP", AbsoluteIndexedIndirect, 3, 6, false, iJMP)

	// The indirect-JMP page-boundary bug fix (resolveAddress keying off
	// c.Variant) costs one extra cycle over the NMOS table's entry.
	set(t, 0x6C, "JMP", Indirect, 3, 6, false, iJMP)

	// Every opcode byte still undecoded after the additions above is an
	// explicit one-byte, one-cycle NOP on CMOS and R65C02, per
	// jmchacon-6502/cpu.go's own CPU_CMOS doc comment.
	for i := range t {
		if t[i].fn == nil {
			set(t, uint8(i), "NOP", Implied, 1, 1, false, iNOP)
		}
	}
}

// applyRCMOS adds the Rockwell bit instructions on top of a CMOS table.
func applyRCMOS(t *[256]opcode) {
	for bit := uint(0); bit < 8; bit++ {
		set(t, uint8(0x07+bit<<4), "RMB", ZeroPage, 2, 5, false, rmb(bit))
		set(t, uint8(0x87+bit<<4), "SMB", ZeroPage, 2, 5, false, smb(bit))
		set(t, uint8(0x0F+bit<<4), "BBR", ZeroPage, 3, 5, false, bbr(bit))
		set(t, uint8(0x8F+bit<<4), "BBS", ZeroPage, 3, 5, false, bbs(bit))
	}
}

var cmosTable, rcmosTable [256]opcode
var tablesBuilt bool

func buildTables() {
	cmosTable = nmosTable
	applyCMOS(&cmosTable)
	rcmosTable = cmosTable
	applyRCMOS(&rcmosTable)
	tablesBuilt = true
}

// Lookup returns the mnemonic, addressing mode and instruction length for
// opcode byte op on the given variant, for use by disassemble (rather than
// that package keeping its own, necessarily-duplicated copy of the table).
// ok is false only for an NMOS opcode byte with no decode.
func Lookup(variant Variant, op uint8) (mnemonic string, mode AddrMode, bytes int, ok bool) {
	oc := tableFor(variant)[op]
	if oc.fn == nil {
		return "", Implied, 0, false
	}
	return oc.mnemonic, oc.mode, oc.bytes, true
}

// tableFor returns the dispatch table for variant, building the CMOS and
// RCMOS tables from the NMOS base the first time either is requested.
func tableFor(variant Variant) *[256]opcode {
	if !tablesBuilt {
		buildTables()
	}
	switch variant {
	case CMOS:
		return &cmosTable
	case RCMOS:
		return &rcmosTable
	default:
		return &nmosTable
	}
}
