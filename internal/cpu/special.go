package cpu

// buildJMPAbsolute: JMP $nnnn, 3 cycles.
func buildJMPAbsolute(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.base = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) {
			hi := uint16(c.bus.Read(c.PC))
			c.PC++
			c.PC = hi<<8 | c.base
		},
	}
}

// buildJMPIndirect: JMP ($nnnn), 5 cycles, reproducing the page-wrap bug
// where the high byte is fetched from the same page as the low byte
// when the pointer's low byte is $FF.
func buildJMPIndirect(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.base = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) {
			hi := uint16(c.bus.Read(c.PC))
			c.PC++
			c.ptr = hi<<8 | c.base
		},
		func(c *CPU) { c.val = c.bus.Read(c.ptr) },
		func(c *CPU) {
			hiAddr := (c.ptr & 0xFF00) | ((c.ptr + 1) & 0x00FF)
			hi := c.bus.Read(hiAddr)
			c.PC = uint16(hi)<<8 | uint16(c.val)
		},
	}
}

// buildJSR: JSR $nnnn, 6 cycles.
func buildJSR(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.base = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP)) },
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC)) },
		func(c *CPU) {
			hi := uint16(c.bus.Read(c.PC))
			c.PC++
			c.PC = hi<<8 | c.base
		},
	}
}

// buildRTS: RTS, 6 cycles.
func buildRTS(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP)) },
		func(c *CPU) { c.base = uint16(c.pop()) },
		func(c *CPU) {
			hi := uint16(c.pop())
			c.PC = hi<<8 | c.base
		},
		func(c *CPU) { c.bus.Read(c.PC); c.PC++ },
	}
}

// buildRTI: RTI, 6 cycles.
func buildRTI(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP)) },
		func(c *CPU) { c.SetStatusByte(c.pop()) },
		func(c *CPU) { c.base = uint16(c.pop()) },
		func(c *CPU) {
			hi := uint16(c.pop())
			c.PC = hi<<8 | c.base
		},
	}
}

// buildPHA/buildPHP: push A or P, 3 cycles.
func buildPHA(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.push(c.A) },
	}
}

func buildPHP(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.push(c.statusForPush(true)) },
	}
}

// buildPLA/buildPLP: pull A or P, 4 cycles.
func buildPLA(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP)) },
		func(c *CPU) { c.A = c.pop(); c.setZN(c.A) },
	}
}

func buildPLP(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP)) },
		func(c *CPU) { c.SetStatusByte(c.pop()) },
	}
}

// buildBRK: software interrupt, 7 cycles. The padding byte after the
// opcode is read and skipped (real hardware does this whether or not
// software treats it as meaningful), and the vector fetch is resolved
// dynamically so a same-cycle NMI hijacks BRK's vector, the documented
// NMI-during-BRK behavior.
func buildBRK(c *CPU) []microOp {
	c.vectorResolved = false
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC); c.PC++ },
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC)) },
		func(c *CPU) { c.push(c.statusForPush(true)) },
		func(c *CPU) {
			vec := c.vectorFor(false)
			c.I = true
			c.ptr = uint16(c.bus.Read(vec))
		},
		func(c *CPU) {
			vec := c.vectorFor(false) + 1
			hi := uint16(c.bus.Read(vec))
			c.PC = hi<<8 | c.ptr
		},
	}
}
