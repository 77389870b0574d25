package cpu

// Every instruction handler has the same signature an opcode table entry
// stores: it receives the already-resolved effective address (or the
// Accumulator flag for the handful of instructions with an accumulator
// form) and returns any extra cycles beyond the opcode's base count it
// consumed — used by the branch handlers, which add a cycle when the
// branch is taken and a further one when that branch also crosses a page,
// and by ADC/SBC, which add a cycle in decimal mode on CMOS/R65C02.

func (c *CPU) operand(addr uint16, isAcc bool) uint8 {
	if isAcc {
		return c.A
	}
	return c.Mem.Read(addr)
}

func (c *CPU) store(addr uint16, isAcc bool, val uint8) {
	if isAcc {
		c.A = val
		return
	}
	c.Mem.Write(addr, val)
}

// --- loads / stores ---

func iLDA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A = c.Mem.Read(addr)
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

func iLDX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.X = c.Mem.Read(addr)
	c.zeroCheck(c.X)
	c.negativeCheck(c.X)
	return 0
}

func iLDY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Y = c.Mem.Read(addr)
	c.zeroCheck(c.Y)
	c.negativeCheck(c.Y)
	return 0
}

func iSTA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Mem.Write(addr, c.A)
	return 0
}

func iSTX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Mem.Write(addr, c.X)
	return 0
}

func iSTY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Mem.Write(addr, c.Y)
	return 0
}

func iSTZ(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Mem.Write(addr, 0)
	return 0
}

// --- transfers ---

func iTAX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.X = c.A
	c.zeroCheck(c.X)
	c.negativeCheck(c.X)
	return 0
}

func iTAY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Y = c.A
	c.zeroCheck(c.Y)
	c.negativeCheck(c.Y)
	return 0
}

func iTXA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A = c.X
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

func iTYA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A = c.Y
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

func iTSX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.X = c.SP
	c.zeroCheck(c.X)
	c.negativeCheck(c.X)
	return 0
}

func iTXS(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.SP = c.X
	return 0
}

// --- stack ---

func iPHA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.push(c.A); return 0 }

func iPLA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A = c.pop()
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

func iPHP(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.push(c.P | PUnused | PBreak)
	return 0
}

func iPLP(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.P = (c.pop() &^ PBreak) | PUnused
	return 0
}

func iPHX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.push(c.X); return 0 }
func iPHY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.push(c.Y); return 0 }

func iPLX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.X = c.pop()
	c.zeroCheck(c.X)
	c.negativeCheck(c.X)
	return 0
}

func iPLY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Y = c.pop()
	c.zeroCheck(c.Y)
	c.negativeCheck(c.Y)
	return 0
}

// --- logic ---

func iAND(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A &= c.Mem.Read(addr)
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

func iORA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A |= c.Mem.Read(addr)
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

func iEOR(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.A ^= c.Mem.Read(addr)
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return 0
}

// iBIT implements BIT for its ZP/Absolute forms: N and V are copied from
// bits 7 and 6 of the operand, and Z reflects A&operand.
func iBIT(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	val := c.Mem.Read(addr)
	c.zeroCheck(c.A & val)
	c.SetFlag(PNegative, val&0x80 != 0)
	c.SetFlag(POverflow, val&0x40 != 0)
	return 0
}

// iBITImm implements the 65C02 immediate-mode BIT: only Z is affected,
// since there is no memory operand byte whose bits 7/6 mean anything.
func iBITImm(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	val := c.Mem.Read(addr)
	c.zeroCheck(c.A & val)
	return 0
}

// iTRB clears the bits of A in the operand (A is unmodified) and sets Z
// from A&operand before the clear.
func iTRB(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	val := c.Mem.Read(addr)
	c.zeroCheck(c.A & val)
	c.Mem.Write(addr, val&^c.A)
	return 0
}

// iTSB sets the bits of A in the operand (A is unmodified) and sets Z
// from A&operand before the set.
func iTSB(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	val := c.Mem.Read(addr)
	c.zeroCheck(c.A & val)
	c.Mem.Write(addr, val|c.A)
	return 0
}

// --- arithmetic ---

// decimalPenalty charges the extra cycle CMOS/R65C02 spend recomputing
// ADC/SBC's flags from the BCD-corrected result when D is set; NMOS has no
// such penalty since it never does that recomputation.
func (c *CPU) decimalPenalty() int {
	if c.Variant != NMOS && c.GetFlag(PDecimal) {
		return 1
	}
	return 0
}

func iADC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	extra := c.decimalPenalty()
	c.adc(c.Mem.Read(addr))
	return extra
}

func iSBC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	extra := c.decimalPenalty()
	c.sbc(c.Mem.Read(addr))
	return extra
}

func iCMP(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.compare(c.A, c.Mem.Read(addr))
	return 0
}

func iCPX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.compare(c.X, c.Mem.Read(addr))
	return 0
}

func iCPY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.compare(c.Y, c.Mem.Read(addr))
	return 0
}

// --- inc / dec ---

func iINC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	val := c.operand(addr, isAcc) + 1
	c.store(addr, isAcc, val)
	c.zeroCheck(val)
	c.negativeCheck(val)
	return 0
}

func iDEC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	val := c.operand(addr, isAcc) - 1
	c.store(addr, isAcc, val)
	c.zeroCheck(val)
	c.negativeCheck(val)
	return 0
}

func iINX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.X++
	c.zeroCheck(c.X)
	c.negativeCheck(c.X)
	return 0
}

func iINY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Y++
	c.zeroCheck(c.Y)
	c.negativeCheck(c.Y)
	return 0
}

func iDEX(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.X--
	c.zeroCheck(c.X)
	c.negativeCheck(c.X)
	return 0
}

func iDEY(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.Y--
	c.zeroCheck(c.Y)
	c.negativeCheck(c.Y)
	return 0
}

// --- shifts ---

func iASL(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.store(addr, isAcc, c.aslVal(c.operand(addr, isAcc)))
	return 0
}

func iLSR(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.store(addr, isAcc, c.lsrVal(c.operand(addr, isAcc)))
	return 0
}

func iROL(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.store(addr, isAcc, c.rolVal(c.operand(addr, isAcc)))
	return 0
}

func iROR(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.store(addr, isAcc, c.rorVal(c.operand(addr, isAcc)))
	return 0
}

// --- jumps / calls ---

func iJMP(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.PC = addr
	return 0
}

func iJSR(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.pushWord(c.PC - 1)
	c.PC = addr
	return 0
}

func iRTS(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.PC = c.popWord() + 1
	return 0
}

func iRTI(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.P = (c.pop() &^ PBreak) | PUnused
	c.PC = c.popWord()
	return 0
}

// iBRK pushes PC+2 (past the opcode byte and the signature byte that
// follows it) rather than PC+1, the documented quirk that makes BRK two
// bytes long even though its second byte is conventionally ignored.
func iBRK(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	c.PC++
	c.serviceInterrupt(IRQVector, true)
	return 0
}

// --- branches ---

func branch(c *CPU, addr uint16, taken bool) int {
	if !taken {
		return 0
	}
	old := c.PC
	c.PC = addr
	if old&0xFF00 != addr&0xFF00 {
		return 2
	}
	return 1
}

func iBPL(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, !c.GetFlag(PNegative))
}
func iBMI(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, c.GetFlag(PNegative))
}
func iBVC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, !c.GetFlag(POverflow))
}
func iBVS(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, c.GetFlag(POverflow))
}
func iBCC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, !c.GetFlag(PCarry))
}
func iBCS(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, c.GetFlag(PCarry))
}
func iBNE(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, !c.GetFlag(PZero))
}
func iBEQ(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, c.GetFlag(PZero))
}
func iBRA(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
	return branch(c, addr, true)
}

// --- flags ---

func iCLC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(PCarry, false); return 0 }
func iSEC(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(PCarry, true); return 0 }
func iCLI(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(PInterrupt, false); return 0 }
func iSEI(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(PInterrupt, true); return 0 }
func iCLV(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(POverflow, false); return 0 }
func iCLD(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(PDecimal, false); return 0 }
func iSED(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { c.SetFlag(PDecimal, true); return 0 }

func iNOP(c *CPU, mode AddrMode, addr uint16, isAcc bool) int { return 0 }

// --- R65C02 bit instructions ---

// rmbSmbBit returns the bit index (0-7) encoded in an RMBn/SMBn/BBRn/BBSn
// opcode byte: the three bits above the low nibble's fixed 0x07/0x0F/0x8F
// pattern select which of bits 0-7 the instruction touches.
func rmbSmbBit(opcode uint8) uint {
	return uint(opcode >> 4 & 0x07)
}

func rmb(bit uint) opcodeFn {
	return func(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
		c.Mem.Write(addr, c.Mem.Read(addr)&^(1<<bit))
		return 0
	}
}

func smb(bit uint) opcodeFn {
	return func(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
		c.Mem.Write(addr, c.Mem.Read(addr)|(1<<bit))
		return 0
	}
}

// bbr/bbs read the zero-page operand, then a trailing relative-offset
// byte (resolveAddress does not model this three-byte shape, so these
// handlers fetch the branch target themselves from the current PC).
func bbr(bit uint) opcodeFn {
	return func(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
		val := c.Mem.Read(addr)
		off := int8(c.Mem.Read(c.PC))
		c.PC++
		target := uint16(int32(c.PC) + int32(off))
		return branch(c, target, val&(1<<bit) == 0)
	}
}

func bbs(bit uint) opcodeFn {
	return func(c *CPU, mode AddrMode, addr uint16, isAcc bool) int {
		val := c.Mem.Read(addr)
		off := int8(c.Mem.Read(c.PC))
		c.PC++
		target := uint16(int32(c.PC) + int32(off))
		return branch(c, target, val&(1<<bit) != 0)
	}
}
