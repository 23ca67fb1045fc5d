package cpu

// addressingMode identifies how an instruction's operand is located.
type addressingMode int

const (
	modeImplied addressingMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeRelative
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndexedIndirect
	modeIndirectIndexed
)

// opKind classifies an instruction by its bus-access shape, which is what
// determines the micro-op queue's length and structure, independent of
// the specific operation performed.
type opKind int

const (
	kindRead opKind = iota
	kindWrite
	kindRMW
	kindImplied
	kindBranch
	kindSpecial
	kindKil
)

type execFunc func(c *CPU)

// instruction is one opcode table entry.
type instruction struct {
	name    string
	mode    addressingMode
	kind    opKind
	exec    execFunc
	special func(c *CPU) []microOp
	cond    func(c *CPU) bool
}

// build constructs the micro-op queue for the cycles following the
// already-consumed opcode fetch.
func (inst instruction) build(c *CPU) []microOp {
	switch inst.kind {
	case kindKil:
		c.halted = true
		return nil
	case kindSpecial:
		return inst.special(c)
	case kindBranch:
		return buildBranch(inst.cond)
	case kindImplied:
		return buildImplied(inst.exec)
	}

	switch inst.mode {
	case modeImmediate:
		return buildImmediate(inst.exec)
	case modeZeroPage:
		return buildZeroPage(inst.kind, inst.exec)
	case modeZeroPageX:
		return buildZeroPageIndexed(func(c *CPU) uint8 { return c.X }, inst.kind, inst.exec)
	case modeZeroPageY:
		return buildZeroPageIndexed(func(c *CPU) uint8 { return c.Y }, inst.kind, inst.exec)
	case modeAbsolute:
		return buildAbsolute(inst.kind, inst.exec)
	case modeAbsoluteX:
		return buildAbsoluteIndexed(func(c *CPU) uint8 { return c.X }, inst.kind, inst.exec)
	case modeAbsoluteY:
		return buildAbsoluteIndexed(func(c *CPU) uint8 { return c.Y }, inst.kind, inst.exec)
	case modeIndexedIndirect:
		return buildIndexedIndirect(inst.kind, inst.exec)
	case modeIndirectIndexed:
		return buildIndirectIndexed(inst.kind, inst.exec)
	}
	return nil
}

// buildImplied covers single-byte implied and accumulator instructions:
// one extra bus cycle (a discarded read of the following opcode byte,
// PC not advanced) in addition to the opcode fetch already consumed.
func buildImplied(exec execFunc) []microOp {
	return []microOp{
		func(c *CPU) { c.bus.Read(c.PC); exec(c) },
	}
}

func buildImmediate(exec execFunc) []microOp {
	return []microOp{
		func(c *CPU) { c.val = c.bus.Read(c.PC); c.PC++; exec(c) },
	}
}

func rmwTail(exec execFunc) []microOp {
	return []microOp{
		func(c *CPU) { c.val = c.bus.Read(c.addr) },
		func(c *CPU) { c.bus.Write(c.addr, c.val) },
		func(c *CPU) { exec(c); c.bus.Write(c.addr, c.val) },
	}
}

func buildZeroPage(kind opKind, exec execFunc) []microOp {
	head := func(c *CPU) { c.addr = uint16(c.bus.Read(c.PC)); c.PC++ }
	switch kind {
	case kindWrite:
		return []microOp{head, func(c *CPU) { exec(c) }}
	case kindRMW:
		return append([]microOp{head}, rmwTail(exec)...)
	default:
		return []microOp{head, func(c *CPU) { c.val = c.bus.Read(c.addr); exec(c) }}
	}
}

func buildZeroPageIndexed(index func(c *CPU) uint8, kind opKind, exec execFunc) []microOp {
	head := []microOp{
		func(c *CPU) { c.base = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) {
			c.bus.Read(c.base)
			c.addr = uint16(uint8(c.base) + index(c))
		},
	}
	switch kind {
	case kindWrite:
		return append(head, func(c *CPU) { exec(c) })
	case kindRMW:
		return append(head, rmwTail(exec)...)
	default:
		return append(head, func(c *CPU) { c.val = c.bus.Read(c.addr); exec(c) })
	}
}

func buildAbsolute(kind opKind, exec execFunc) []microOp {
	head := []microOp{
		func(c *CPU) { c.base = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) {
			hi := uint16(c.bus.Read(c.PC))
			c.PC++
			c.addr = hi<<8 | c.base
		},
	}
	switch kind {
	case kindWrite:
		return append(head, func(c *CPU) { exec(c) })
	case kindRMW:
		return append(head, rmwTail(exec)...)
	default:
		return append(head, func(c *CPU) { c.val = c.bus.Read(c.addr); exec(c) })
	}
}

// finalIndexedOp is the cycle shared by every indexed addressing mode
// that can take an extra cycle on a page crossing: c.addr holds the
// "uncorrected" address (same low byte, possibly wrong page) and c.ptr
// holds the corrected address. A read reads the uncorrected address,
// using it as the real result unless the page crossed, in which case a
// further cycle (to re-read the corrected address) is appended at
// runtime. Write and read-modify-write always take the extra cycle.
func finalIndexedOp(kind opKind, exec execFunc) microOp {
	return func(c *CPU) {
		v := c.bus.Read(c.addr)
		crossed := c.addr != c.ptr
		switch kind {
		case kindWrite:
			c.addr = c.ptr
			c.queue = append(c.queue, func(c *CPU) { exec(c) })
		case kindRMW:
			c.addr = c.ptr
			c.queue = append(c.queue, rmwTail(exec)...)
		default:
			if !crossed {
				c.val = v
				exec(c)
			} else {
				c.queue = append(c.queue, func(c *CPU) { c.val = c.bus.Read(c.ptr); exec(c) })
			}
		}
	}
}

func buildAbsoluteIndexed(index func(c *CPU) uint8, kind opKind, exec execFunc) []microOp {
	return []microOp{
		func(c *CPU) { c.base = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) {
			hi := uint16(c.bus.Read(c.PC))
			c.PC++
			lo := c.base
			idx := uint16(index(c))
			full := hi<<8 | lo
			c.addr = hi<<8 | ((lo + idx) & 0xFF)
			c.ptr = full + idx
		},
		finalIndexedOp(kind, exec),
	}
}

func buildIndexedIndirect(kind opKind, exec execFunc) []microOp {
	head := []microOp{
		func(c *CPU) { c.ptr = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) {
			c.bus.Read(c.ptr)
			c.ptr = uint16(uint8(c.ptr) + c.X)
		},
		func(c *CPU) { c.base = uint16(c.bus.Read(c.ptr)) },
		func(c *CPU) {
			hiAddr := uint16(uint8(c.ptr) + 1)
			hi := uint16(c.bus.Read(hiAddr))
			c.addr = hi<<8 | c.base
		},
	}
	switch kind {
	case kindWrite:
		return append(head, func(c *CPU) { exec(c) })
	case kindRMW:
		return append(head, rmwTail(exec)...)
	default:
		return append(head, func(c *CPU) { c.val = c.bus.Read(c.addr); exec(c) })
	}
}

func buildIndirectIndexed(kind opKind, exec execFunc) []microOp {
	return []microOp{
		func(c *CPU) { c.ptr = uint16(c.bus.Read(c.PC)); c.PC++ },
		func(c *CPU) { c.base = uint16(c.bus.Read(c.ptr)) },
		func(c *CPU) {
			hiAddr := uint16(uint8(c.ptr) + 1)
			hi := c.bus.Read(hiAddr)
			lo8 := uint8(c.base)
			full := uint16(hi)<<8 | c.base
			c.addr = uint16(hi)<<8 | uint16(lo8+c.Y)
			c.ptr = full + uint16(c.Y)
		},
		finalIndexedOp(kind, exec),
	}
}

// buildBranch covers all eight conditional branches: 2 cycles when not
// taken, 3 when taken to the same page, 4 when taken across a page
// boundary, each extra cycle discovered and appended at runtime.
func buildBranch(cond func(c *CPU) bool) []microOp {
	return []microOp{
		func(c *CPU) {
			offset := int8(c.bus.Read(c.PC))
			c.PC++
			if !cond(c) {
				return
			}
			target := uint16(int32(c.PC) + int32(offset))
			c.addr = target
			c.queue = append(c.queue, func(c *CPU) {
				c.bus.Read(c.PC)
				if c.addr&0xFF00 == c.PC&0xFF00 {
					c.PC = c.addr
					return
				}
				c.queue = append(c.queue, func(c *CPU) {
					c.bus.Read((c.PC & 0xFF00) | (c.addr & 0x00FF))
					c.PC = c.addr
				})
			})
		},
	}
}
