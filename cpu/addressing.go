package cpu

// AddrMode identifies how an opcode's operand bytes are turned into an
// effective address, as a proper Go type instead of untyped ints.
type AddrMode int

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
	// ZeroPageIndirect is the 65C02 addition: (zp), without the X/Y
	// pre/post-indexing the NMOS indirect modes require.
	ZeroPageIndirect
	// AbsoluteIndexedIndirect is the 65C02 addition used only by
	// JMP (abs,X): X is added to the absolute operand before the pointer
	// is fetched. (The 65C02 fix of the NMOS indirect-JMP page-boundary
	// bug lives in the Indirect case of resolveAddress, not here.)
	AbsoluteIndexedIndirect
)

// resolveAddress fetches whatever operand bytes mode requires (advancing
// PC past them), returning the effective address, whether computing it
// crossed a page boundary (for the +1 cycle read-penalty modes), and
// whether mode is Accumulator (so instruction bodies shared between
// memory and accumulator forms know which to touch).
func (c *CPU) resolveAddress(mode AddrMode) (addr uint16, pageCrossed bool, isAcc bool) {
	switch mode {
	case Implied:
		return 0, false, false
	case Accumulator:
		return 0, false, true
	case Immediate:
		addr = c.PC
		c.PC++
		return addr, false, false
	case ZeroPage:
		addr = uint16(c.Mem.Read(c.PC))
		c.PC++
		return addr, false, false
	case ZeroPageX:
		addr = uint16(uint8(c.Mem.Read(c.PC) + c.X))
		c.PC++
		return addr, false, false
	case ZeroPageY:
		addr = uint16(uint8(c.Mem.Read(c.PC) + c.Y))
		c.PC++
		return addr, false, false
	case Relative:
		off := int8(c.Mem.Read(c.PC))
		c.PC++
		base := c.PC
		addr = uint16(int32(base) + int32(off))
		return addr, base&0xFF00 != addr&0xFF00, false
	case Absolute:
		addr = c.Mem.ReadWord(c.PC)
		c.PC += 2
		return addr, false, false
	case AbsoluteX:
		base := c.Mem.ReadWord(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		return addr, base&0xFF00 != addr&0xFF00, false
	case AbsoluteY:
		base := c.Mem.ReadWord(c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		return addr, base&0xFF00 != addr&0xFF00, false
	case Indirect:
		ptr := c.Mem.ReadWord(c.PC)
		c.PC += 2
		if c.Variant == NMOS && ptr&0xFF == 0xFF {
			// The NMOS indirect-JMP bug: the high byte is fetched from the
			// start of the same page instead of the next page.
			lo := uint16(c.Mem.Read(ptr))
			hi := uint16(c.Mem.Read(ptr & 0xFF00))
			return hi<<8 | lo, false, false
		}
		return c.Mem.ReadWord(ptr), false, false
	case IndirectX:
		zp := c.Mem.Read(c.PC) + c.X
		c.PC++
		addr = c.readZPWord(zp)
		return addr, false, false
	case IndirectY:
		zp := c.Mem.Read(c.PC)
		c.PC++
		base := c.readZPWord(zp)
		addr = base + uint16(c.Y)
		return addr, base&0xFF00 != addr&0xFF00, false
	case ZeroPageIndirect:
		zp := c.Mem.Read(c.PC)
		c.PC++
		addr = c.readZPWord(zp)
		return addr, false, false
	case AbsoluteIndexedIndirect:
		base := c.Mem.ReadWord(c.PC)
		c.PC += 2
		ptr := base + uint16(c.X)
		return c.Mem.ReadWord(ptr), false, false
	}
	return 0, false, false
}

// readZPWord reads a little-endian word whose two bytes both live in zero
// page, wrapping the high-byte fetch within page zero (zp=0xFF reads back
// 0xFF then 0x00, never 0x100) the way the NMOS (zp,X)/(zp),Y pointer
// fetch and the 65C02 (zp) fetch both do.
func (c *CPU) readZPWord(zp uint8) uint16 {
	lo := uint16(c.Mem.Read(uint16(zp)))
	hi := uint16(c.Mem.Read(uint16(zp + 1)))
	return hi<<8 | lo
}
