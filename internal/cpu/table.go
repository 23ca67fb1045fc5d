package cpu

// initInstructions populates the 256-entry opcode table. Addressing mode
// and bus-access kind are decoded generically by instruction.build; this
// table only needs to name each opcode's shape and its exec function.
func (c *CPU) initInstructions() {
	t := &c.instructions

	reg := func(op uint8, name string, mode addressingMode, kind opKind, exec execFunc) {
		t[op] = instruction{name: name, mode: mode, kind: kind, exec: exec}
	}
	implied := func(op uint8, name string, exec execFunc) {
		t[op] = instruction{name: name, kind: kindImplied, exec: exec}
	}
	branch := func(op uint8, name string, cond func(c *CPU) bool) {
		t[op] = instruction{name: name, kind: kindBranch, cond: cond}
	}
	special := func(op uint8, name string, build func(c *CPU) []microOp) {
		t[op] = instruction{name: name, kind: kindSpecial, special: build}
	}

	// --- loads ---
	reg(0xA9, "LDA", modeImmediate, kindRead, opLDA)
	reg(0xA5, "LDA", modeZeroPage, kindRead, opLDA)
	reg(0xB5, "LDA", modeZeroPageX, kindRead, opLDA)
	reg(0xAD, "LDA", modeAbsolute, kindRead, opLDA)
	reg(0xBD, "LDA", modeAbsoluteX, kindRead, opLDA)
	reg(0xB9, "LDA", modeAbsoluteY, kindRead, opLDA)
	reg(0xA1, "LDA", modeIndexedIndirect, kindRead, opLDA)
	reg(0xB1, "LDA", modeIndirectIndexed, kindRead, opLDA)

	reg(0xA2, "LDX", modeImmediate, kindRead, opLDX)
	reg(0xA6, "LDX", modeZeroPage, kindRead, opLDX)
	reg(0xB6, "LDX", modeZeroPageY, kindRead, opLDX)
	reg(0xAE, "LDX", modeAbsolute, kindRead, opLDX)
	reg(0xBE, "LDX", modeAbsoluteY, kindRead, opLDX)

	reg(0xA0, "LDY", modeImmediate, kindRead, opLDY)
	reg(0xA4, "LDY", modeZeroPage, kindRead, opLDY)
	reg(0xB4, "LDY", modeZeroPageX, kindRead, opLDY)
	reg(0xAC, "LDY", modeAbsolute, kindRead, opLDY)
	reg(0xBC, "LDY", modeAbsoluteX, kindRead, opLDY)

	// --- stores ---
	reg(0x85, "STA", modeZeroPage, kindWrite, opSTA)
	reg(0x95, "STA", modeZeroPageX, kindWrite, opSTA)
	reg(0x8D, "STA", modeAbsolute, kindWrite, opSTA)
	reg(0x9D, "STA", modeAbsoluteX, kindWrite, opSTA)
	reg(0x99, "STA", modeAbsoluteY, kindWrite, opSTA)
	reg(0x81, "STA", modeIndexedIndirect, kindWrite, opSTA)
	reg(0x91, "STA", modeIndirectIndexed, kindWrite, opSTA)

	reg(0x86, "STX", modeZeroPage, kindWrite, opSTX)
	reg(0x96, "STX", modeZeroPageY, kindWrite, opSTX)
	reg(0x8E, "STX", modeAbsolute, kindWrite, opSTX)

	reg(0x84, "STY", modeZeroPage, kindWrite, opSTY)
	reg(0x94, "STY", modeZeroPageX, kindWrite, opSTY)
	reg(0x8C, "STY", modeAbsolute, kindWrite, opSTY)

	// --- arithmetic / logic ---
	reg(0x69, "ADC", modeImmediate, kindRead, opADC)
	reg(0x65, "ADC", modeZeroPage, kindRead, opADC)
	reg(0x75, "ADC", modeZeroPageX, kindRead, opADC)
	reg(0x6D, "ADC", modeAbsolute, kindRead, opADC)
	reg(0x7D, "ADC", modeAbsoluteX, kindRead, opADC)
	reg(0x79, "ADC", modeAbsoluteY, kindRead, opADC)
	reg(0x61, "ADC", modeIndexedIndirect, kindRead, opADC)
	reg(0x71, "ADC", modeIndirectIndexed, kindRead, opADC)

	reg(0xE9, "SBC", modeImmediate, kindRead, opSBC)
	reg(0xEB, "SBC", modeImmediate, kindRead, opSBC) // undocumented duplicate
	reg(0xE5, "SBC", modeZeroPage, kindRead, opSBC)
	reg(0xF5, "SBC", modeZeroPageX, kindRead, opSBC)
	reg(0xED, "SBC", modeAbsolute, kindRead, opSBC)
	reg(0xFD, "SBC", modeAbsoluteX, kindRead, opSBC)
	reg(0xF9, "SBC", modeAbsoluteY, kindRead, opSBC)
	reg(0xE1, "SBC", modeIndexedIndirect, kindRead, opSBC)
	reg(0xF1, "SBC", modeIndirectIndexed, kindRead, opSBC)

	reg(0x29, "AND", modeImmediate, kindRead, opAND)
	reg(0x25, "AND", modeZeroPage, kindRead, opAND)
	reg(0x35, "AND", modeZeroPageX, kindRead, opAND)
	reg(0x2D, "AND", modeAbsolute, kindRead, opAND)
	reg(0x3D, "AND", modeAbsoluteX, kindRead, opAND)
	reg(0x39, "AND", modeAbsoluteY, kindRead, opAND)
	reg(0x21, "AND", modeIndexedIndirect, kindRead, opAND)
	reg(0x31, "AND", modeIndirectIndexed, kindRead, opAND)

	reg(0x09, "ORA", modeImmediate, kindRead, opORA)
	reg(0x05, "ORA", modeZeroPage, kindRead, opORA)
	reg(0x15, "ORA", modeZeroPageX, kindRead, opORA)
	reg(0x0D, "ORA", modeAbsolute, kindRead, opORA)
	reg(0x1D, "ORA", modeAbsoluteX, kindRead, opORA)
	reg(0x19, "ORA", modeAbsoluteY, kindRead, opORA)
	reg(0x01, "ORA", modeIndexedIndirect, kindRead, opORA)
	reg(0x11, "ORA", modeIndirectIndexed, kindRead, opORA)

	reg(0x49, "EOR", modeImmediate, kindRead, opEOR)
	reg(0x45, "EOR", modeZeroPage, kindRead, opEOR)
	reg(0x55, "EOR", modeZeroPageX, kindRead, opEOR)
	reg(0x4D, "EOR", modeAbsolute, kindRead, opEOR)
	reg(0x5D, "EOR", modeAbsoluteX, kindRead, opEOR)
	reg(0x59, "EOR", modeAbsoluteY, kindRead, opEOR)
	reg(0x41, "EOR", modeIndexedIndirect, kindRead, opEOR)
	reg(0x51, "EOR", modeIndirectIndexed, kindRead, opEOR)

	reg(0xC9, "CMP", modeImmediate, kindRead, opCMP)
	reg(0xC5, "CMP", modeZeroPage, kindRead, opCMP)
	reg(0xD5, "CMP", modeZeroPageX, kindRead, opCMP)
	reg(0xCD, "CMP", modeAbsolute, kindRead, opCMP)
	reg(0xDD, "CMP", modeAbsoluteX, kindRead, opCMP)
	reg(0xD9, "CMP", modeAbsoluteY, kindRead, opCMP)
	reg(0xC1, "CMP", modeIndexedIndirect, kindRead, opCMP)
	reg(0xD1, "CMP", modeIndirectIndexed, kindRead, opCMP)

	reg(0xE0, "CPX", modeImmediate, kindRead, opCPX)
	reg(0xE4, "CPX", modeZeroPage, kindRead, opCPX)
	reg(0xEC, "CPX", modeAbsolute, kindRead, opCPX)

	reg(0xC0, "CPY", modeImmediate, kindRead, opCPY)
	reg(0xC4, "CPY", modeZeroPage, kindRead, opCPY)
	reg(0xCC, "CPY", modeAbsolute, kindRead, opCPY)

	reg(0x24, "BIT", modeZeroPage, kindRead, opBIT)
	reg(0x2C, "BIT", modeAbsolute, kindRead, opBIT)

	// --- read-modify-write ---
	implied(0x0A, "ASL", opASLAcc)
	reg(0x06, "ASL", modeZeroPage, kindRMW, opASL)
	reg(0x16, "ASL", modeZeroPageX, kindRMW, opASL)
	reg(0x0E, "ASL", modeAbsolute, kindRMW, opASL)
	reg(0x1E, "ASL", modeAbsoluteX, kindRMW, opASL)

	implied(0x4A, "LSR", opLSRAcc)
	reg(0x46, "LSR", modeZeroPage, kindRMW, opLSR)
	reg(0x56, "LSR", modeZeroPageX, kindRMW, opLSR)
	reg(0x4E, "LSR", modeAbsolute, kindRMW, opLSR)
	reg(0x5E, "LSR", modeAbsoluteX, kindRMW, opLSR)

	implied(0x2A, "ROL", opROLAcc)
	reg(0x26, "ROL", modeZeroPage, kindRMW, opROL)
	reg(0x36, "ROL", modeZeroPageX, kindRMW, opROL)
	reg(0x2E, "ROL", modeAbsolute, kindRMW, opROL)
	reg(0x3E, "ROL", modeAbsoluteX, kindRMW, opROL)

	implied(0x6A, "ROR", opRORAcc)
	reg(0x66, "ROR", modeZeroPage, kindRMW, opROR)
	reg(0x76, "ROR", modeZeroPageX, kindRMW, opROR)
	reg(0x6E, "ROR", modeAbsolute, kindRMW, opROR)
	reg(0x7E, "ROR", modeAbsoluteX, kindRMW, opROR)

	reg(0xE6, "INC", modeZeroPage, kindRMW, opINC)
	reg(0xF6, "INC", modeZeroPageX, kindRMW, opINC)
	reg(0xEE, "INC", modeAbsolute, kindRMW, opINC)
	reg(0xFE, "INC", modeAbsoluteX, kindRMW, opINC)

	reg(0xC6, "DEC", modeZeroPage, kindRMW, opDEC)
	reg(0xD6, "DEC", modeZeroPageX, kindRMW, opDEC)
	reg(0xCE, "DEC", modeAbsolute, kindRMW, opDEC)
	reg(0xDE, "DEC", modeAbsoluteX, kindRMW, opDEC)

	// --- implied register ops ---
	implied(0xE8, "INX", opINX)
	implied(0xCA, "DEX", opDEX)
	implied(0xC8, "INY", opINY)
	implied(0x88, "DEY", opDEY)
	implied(0xAA, "TAX", opTAX)
	implied(0x8A, "TXA", opTXA)
	implied(0xA8, "TAY", opTAY)
	implied(0x98, "TYA", opTYA)
	implied(0xBA, "TSX", opTSX)
	implied(0x9A, "TXS", opTXS)
	implied(0x18, "CLC", opCLC)
	implied(0x38, "SEC", opSEC)
	implied(0x58, "CLI", opCLI)
	implied(0x78, "SEI", opSEI)
	implied(0xB8, "CLV", opCLV)
	implied(0xD8, "CLD", opCLD)
	implied(0xF8, "SED", opSED)
	implied(0xEA, "NOP", opNOP)

	// --- undocumented NOPs: same bus shape as their documented twins,
	// the fetched/read operand is simply discarded. ---
	noop := func(c *CPU) {}
	implied(0x1A, "NOP", opNOP)
	implied(0x3A, "NOP", opNOP)
	implied(0x5A, "NOP", opNOP)
	implied(0x7A, "NOP", opNOP)
	implied(0xDA, "NOP", opNOP)
	implied(0xFA, "NOP", opNOP)
	reg(0x80, "NOP", modeImmediate, kindRead, noop)
	reg(0x82, "NOP", modeImmediate, kindRead, noop)
	reg(0x89, "NOP", modeImmediate, kindRead, noop)
	reg(0xC2, "NOP", modeImmediate, kindRead, noop)
	reg(0xE2, "NOP", modeImmediate, kindRead, noop)
	reg(0x04, "NOP", modeZeroPage, kindRead, noop)
	reg(0x44, "NOP", modeZeroPage, kindRead, noop)
	reg(0x64, "NOP", modeZeroPage, kindRead, noop)
	reg(0x14, "NOP", modeZeroPageX, kindRead, noop)
	reg(0x34, "NOP", modeZeroPageX, kindRead, noop)
	reg(0x54, "NOP", modeZeroPageX, kindRead, noop)
	reg(0x74, "NOP", modeZeroPageX, kindRead, noop)
	reg(0xD4, "NOP", modeZeroPageX, kindRead, noop)
	reg(0xF4, "NOP", modeZeroPageX, kindRead, noop)
	reg(0x0C, "NOP", modeAbsolute, kindRead, noop)
	reg(0x1C, "NOP", modeAbsoluteX, kindRead, noop)
	reg(0x3C, "NOP", modeAbsoluteX, kindRead, noop)
	reg(0x5C, "NOP", modeAbsoluteX, kindRead, noop)
	reg(0x7C, "NOP", modeAbsoluteX, kindRead, noop)
	reg(0xDC, "NOP", modeAbsoluteX, kindRead, noop)
	reg(0xFC, "NOP", modeAbsoluteX, kindRead, noop)

	// --- stack / flow ---
	special(0x48, "PHA", buildPHA)
	special(0x08, "PHP", buildPHP)
	special(0x68, "PLA", buildPLA)
	special(0x28, "PLP", buildPLP)
	special(0x4C, "JMP", buildJMPAbsolute)
	special(0x6C, "JMP", buildJMPIndirect)
	special(0x20, "JSR", buildJSR)
	special(0x60, "RTS", buildRTS)
	special(0x40, "RTI", buildRTI)
	special(0x00, "BRK", buildBRK)

	// --- branches ---
	branch(0x90, "BCC", func(c *CPU) bool { return !c.C })
	branch(0xB0, "BCS", func(c *CPU) bool { return c.C })
	branch(0xD0, "BNE", func(c *CPU) bool { return !c.Z })
	branch(0xF0, "BEQ", func(c *CPU) bool { return c.Z })
	branch(0x10, "BPL", func(c *CPU) bool { return !c.N })
	branch(0x30, "BMI", func(c *CPU) bool { return c.N })
	branch(0x50, "BVC", func(c *CPU) bool { return !c.V })
	branch(0x70, "BVS", func(c *CPU) bool { return c.V })

	// --- undocumented opcodes with documented, stable behavior ---
	reg(0x07, "SLO", modeZeroPage, kindRMW, opSLO)
	reg(0x17, "SLO", modeZeroPageX, kindRMW, opSLO)
	reg(0x0F, "SLO", modeAbsolute, kindRMW, opSLO)
	reg(0x1F, "SLO", modeAbsoluteX, kindRMW, opSLO)
	reg(0x1B, "SLO", modeAbsoluteY, kindRMW, opSLO)
	reg(0x03, "SLO", modeIndexedIndirect, kindRMW, opSLO)
	reg(0x13, "SLO", modeIndirectIndexed, kindRMW, opSLO)

	reg(0x27, "RLA", modeZeroPage, kindRMW, opRLA)
	reg(0x37, "RLA", modeZeroPageX, kindRMW, opRLA)
	reg(0x2F, "RLA", modeAbsolute, kindRMW, opRLA)
	reg(0x3F, "RLA", modeAbsoluteX, kindRMW, opRLA)
	reg(0x3B, "RLA", modeAbsoluteY, kindRMW, opRLA)
	reg(0x23, "RLA", modeIndexedIndirect, kindRMW, opRLA)
	reg(0x33, "RLA", modeIndirectIndexed, kindRMW, opRLA)

	reg(0x47, "SRE", modeZeroPage, kindRMW, opSRE)
	reg(0x57, "SRE", modeZeroPageX, kindRMW, opSRE)
	reg(0x4F, "SRE", modeAbsolute, kindRMW, opSRE)
	reg(0x5F, "SRE", modeAbsoluteX, kindRMW, opSRE)
	reg(0x5B, "SRE", modeAbsoluteY, kindRMW, opSRE)
	reg(0x43, "SRE", modeIndexedIndirect, kindRMW, opSRE)
	reg(0x53, "SRE", modeIndirectIndexed, kindRMW, opSRE)

	reg(0x67, "RRA", modeZeroPage, kindRMW, opRRA)
	reg(0x77, "RRA", modeZeroPageX, kindRMW, opRRA)
	reg(0x6F, "RRA", modeAbsolute, kindRMW, opRRA)
	reg(0x7F, "RRA", modeAbsoluteX, kindRMW, opRRA)
	reg(0x7B, "RRA", modeAbsoluteY, kindRMW, opRRA)
	reg(0x63, "RRA", modeIndexedIndirect, kindRMW, opRRA)
	reg(0x73, "RRA", modeIndirectIndexed, kindRMW, opRRA)

	reg(0x87, "SAX", modeZeroPage, kindWrite, opSAX)
	reg(0x97, "SAX", modeZeroPageY, kindWrite, opSAX)
	reg(0x8F, "SAX", modeAbsolute, kindWrite, opSAX)
	reg(0x83, "SAX", modeIndexedIndirect, kindWrite, opSAX)

	reg(0xA7, "LAX", modeZeroPage, kindRead, opLAX)
	reg(0xB7, "LAX", modeZeroPageY, kindRead, opLAX)
	reg(0xAF, "LAX", modeAbsolute, kindRead, opLAX)
	reg(0xBF, "LAX", modeAbsoluteY, kindRead, opLAX)
	reg(0xA3, "LAX", modeIndexedIndirect, kindRead, opLAX)
	reg(0xB3, "LAX", modeIndirectIndexed, kindRead, opLAX)

	reg(0xC7, "DCP", modeZeroPage, kindRMW, opDCP)
	reg(0xD7, "DCP", modeZeroPageX, kindRMW, opDCP)
	reg(0xCF, "DCP", modeAbsolute, kindRMW, opDCP)
	reg(0xDF, "DCP", modeAbsoluteX, kindRMW, opDCP)
	reg(0xDB, "DCP", modeAbsoluteY, kindRMW, opDCP)
	reg(0xC3, "DCP", modeIndexedIndirect, kindRMW, opDCP)
	reg(0xD3, "DCP", modeIndirectIndexed, kindRMW, opDCP)

	reg(0xE7, "ISB", modeZeroPage, kindRMW, opISB)
	reg(0xF7, "ISB", modeZeroPageX, kindRMW, opISB)
	reg(0xEF, "ISB", modeAbsolute, kindRMW, opISB)
	reg(0xFF, "ISB", modeAbsoluteX, kindRMW, opISB)
	reg(0xFB, "ISB", modeAbsoluteY, kindRMW, opISB)
	reg(0xE3, "ISB", modeIndexedIndirect, kindRMW, opISB)
	reg(0xF3, "ISB", modeIndirectIndexed, kindRMW, opISB)

	reg(0x0B, "ANC", modeImmediate, kindRead, opANC)
	reg(0x2B, "ANC", modeImmediate, kindRead, opANC)
	reg(0x4B, "ALR", modeImmediate, kindRead, opALR)
	reg(0x6B, "ARR", modeImmediate, kindRead, opARR)
	reg(0x8B, "XAA", modeImmediate, kindRead, opXAA)
	reg(0xCB, "AXS", modeImmediate, kindRead, opAXS)

	reg(0x9F, "AHX", modeAbsoluteY, kindWrite, opAHX)
	reg(0x93, "AHX", modeIndirectIndexed, kindWrite, opAHX)
	reg(0x9C, "SHY", modeAbsoluteX, kindWrite, opSHY)
	reg(0x9E, "SHX", modeAbsoluteY, kindWrite, opSHX)
	reg(0x9B, "TAS", modeAbsoluteY, kindWrite, opTAS)
	reg(0xBB, "LAS", modeAbsoluteY, kindRead, opLAS)

	// --- KIL/JAM: halts the CPU, rest of the machine keeps running ---
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		t[op] = instruction{name: "KIL", kind: kindKil}
	}
}
