package cpu

// adc implements ADC including decimal mode, following the fixups at
// http://6502.org/tutorials/decimal_mode.html (the same reference
// jmchacon-6502/cpu.go's iADC cites). The NMOS and CMOS variants agree on
// the corrected BCD result but disagree on which intermediate N/Z/V get
// reported from: NMOS reports them from the binary-mode intermediate
// (a documented silicon quirk), CMOS reports them from the final
// decimal-corrected result.
func (c *CPU) adc(operand uint8) {
	a := c.A
	carryIn := uint16(0)
	if c.GetFlag(PCarry) {
		carryIn = 1
	}

	if !c.GetFlag(PDecimal) {
		sum := uint16(a) + uint16(operand) + carryIn
		result := uint8(sum)
		c.overflowCheck(a, operand, result)
		c.carryCheck(sum)
		c.zeroCheck(result)
		c.negativeCheck(result)
		c.A = result
		return
	}

	lo := uint16(a&0x0F) + uint16(operand&0x0F) + carryIn
	hi := uint16(a>>4) + uint16(operand>>4)
	if lo > 9 {
		lo += 6
		hi++
	}

	binSum := uint16(a) + uint16(operand) + carryIn
	binResult := uint8(binSum)
	if c.Variant == NMOS {
		// NMOS ADC in decimal mode sets N/Z/V from the uncorrected binary
		// result, not the BCD-corrected one.
		c.negativeCheck(binResult)
		c.zeroCheck(binResult)
		c.overflowCheck(a, operand, binResult)
	}

	if hi > 9 {
		hi += 6
	}
	carryOut := hi > 15

	result := uint8(hi<<4) | uint8(lo&0x0F)
	c.A = result
	c.SetFlag(PCarry, carryOut)
	if c.Variant != NMOS {
		c.negativeCheck(result)
		c.zeroCheck(result)
		c.overflowCheck(a, operand, result)
	}
}

// sbc implements SBC as ADC with the operand's ones complement, the
// standard 6502 trick, with the same decimal-mode correction split
// between NMOS and CMOS behavior as adc.
func (c *CPU) sbc(operand uint8) {
	a := c.A
	carryIn := uint16(0)
	if c.GetFlag(PCarry) {
		carryIn = 1
	}

	if !c.GetFlag(PDecimal) {
		c.adc(^operand)
		return
	}

	diff := int16(a&0x0F) - int16(operand&0x0F) - int16(1-carryIn)
	lo := diff
	if diff < 0 {
		lo = diff - 6
	}
	hi := int16(a>>4) - int16(operand>>4)
	if diff < 0 {
		hi--
	}
	if hi < 0 {
		hi -= 6
	}

	binDiff := int16(a) - int16(operand) - int16(1-carryIn)
	binResult := uint8(binDiff)
	carryOut := binDiff >= 0
	if c.Variant == NMOS {
		c.negativeCheck(binResult)
		c.zeroCheck(binResult)
		c.overflowCheck(a, ^operand, binResult)
	}

	result := uint8(hi<<4) | uint8(lo&0x0F)
	c.A = result
	c.SetFlag(PCarry, carryOut)
	if c.Variant != NMOS {
		// Unlike NMOS, CMOS/R65C02 report N/Z/V from the decimal-corrected
		// result rather than the binary intermediate.
		c.negativeCheck(result)
		c.zeroCheck(result)
		c.overflowCheck(a, ^operand, result)
	}
}

// compare implements CMP/CPX/CPY: subtract without storing, setting C/Z/N
// from the unsigned comparison of reg against operand.
func (c *CPU) compare(reg, operand uint8) {
	diff := uint16(reg) - uint16(operand)
	c.SetFlag(PCarry, reg >= operand)
	c.zeroCheck(uint8(diff))
	c.negativeCheck(uint8(diff))
}

func (c *CPU) aslVal(val uint8) uint8 {
	c.SetFlag(PCarry, val&0x80 != 0)
	result := val << 1
	c.zeroCheck(result)
	c.negativeCheck(result)
	return result
}

func (c *CPU) lsrVal(val uint8) uint8 {
	c.SetFlag(PCarry, val&0x01 != 0)
	result := val >> 1
	c.zeroCheck(result)
	c.negativeCheck(result)
	return result
}

func (c *CPU) rolVal(val uint8) uint8 {
	carryIn := uint8(0)
	if c.GetFlag(PCarry) {
		carryIn = 1
	}
	c.SetFlag(PCarry, val&0x80 != 0)
	result := (val << 1) | carryIn
	c.zeroCheck(result)
	c.negativeCheck(result)
	return result
}

func (c *CPU) rorVal(val uint8) uint8 {
	carryIn := uint8(0)
	if c.GetFlag(PCarry) {
		carryIn = 0x80
	}
	c.SetFlag(PCarry, val&0x01 != 0)
	result := (val >> 1) | carryIn
	c.zeroCheck(result)
	c.negativeCheck(result)
	return result
}
