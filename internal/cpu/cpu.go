// Package cpu implements a cycle-stepped 6502 (2A03/2A07) core: one bus
// cycle is consumed per call to Tick, using a per-instruction micro-op
// queue built at opcode-fetch time instead of executing whole
// instructions in one call. This is what lets internal/bus interleave
// the CPU with the PPU (3 dots per CPU cycle) and APU (1 half-cycle per
// CPU cycle) the way real hardware does.
package cpu

// Bus is the narrow memory interface the CPU drives. internal/memory.Memory
// implements it; tests use smaller fakes.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// IRQSource identifies an individual device asserting the shared,
// level-triggered IRQ line (APU frame sequencer, DMC, mapper).
type IRQSource uint8

const (
	IRQFrameCounter IRQSource = 1 << iota
	IRQDMC
	IRQMapper
)

// microOp is one bus cycle's worth of CPU work, captured as a closure
// over the in-flight instruction's decode state.
type microOp func(c *CPU)

// CPU is a cycle-stepped MOS 6502 core with the NES's documented
// undocumented-opcode behavior.
type CPU struct {
	A, X, Y, SP uint8
	PC          uint16

	// Status flags, kept individually (not packed) so ordinary Go code
	// reads/writes them directly; GetStatusByte/SetStatusByte pack and
	// unpack the 8-bit P register at the documented bit positions.
	N, V, D, I, Z, C bool

	bus Bus

	queue []microOp
	qi    int

	cycles uint64

	opcode uint8
	addr   uint16 // effective operand address for this instruction
	ptr    uint16 // pointer used by indirect addressing modes
	val    uint8  // fetched operand byte
	base   uint16 // pre-index base address, for page-cross detection
	branch bool   // branch condition result, computed at decode time

	nmiLine     bool // current PPU-driven NMI line level
	nmiPrevLine bool
	nmiPending  bool // edge-latched, cleared when an NMI is dispatched

	irqSources IRQSource

	servicePending bool
	serviceIsNMI   bool

	vectorResolved bool // latches the NMI-hijack decision across the two vector-fetch cycles
	vectorIsNMI    bool

	polled bool // whether interrupt lines have been sampled for the in-flight instruction

	halted bool // true after executing a KIL/JAM opcode

	instructions [256]instruction
}

// New creates a CPU driving the given bus. Call Reset before the first Tick.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.initInstructions()
	return c
}

// Halted reports whether the CPU has executed an illegal KIL opcode and
// stopped fetching; the rest of the machine keeps ticking.
func (c *CPU) Halted() bool { return c.halted }

// Cycles returns the total number of bus cycles the CPU has consumed.
func (c *CPU) Cycles() uint64 { return c.cycles }

// SetNMILine sets the PPU-driven NMI line level. An edge (false->true
// transition) latches a pending NMI, matching the real edge-triggered
// line; $2000 writes that toggle NMI enable while vblank is already
// active call this too, reproducing the immediate-NMI quirk.
func (c *CPU) SetNMILine(asserted bool) {
	if asserted && !c.nmiPrevLine {
		c.nmiPending = true
	}
	c.nmiPrevLine = asserted
	c.nmiLine = asserted
}

// SetIRQ asserts or deasserts one level-triggered IRQ source.
func (c *CPU) SetIRQ(source IRQSource, asserted bool) {
	if asserted {
		c.irqSources |= source
	} else {
		c.irqSources &^= source
	}
}

// Reset performs the 7-cycle power-on/reset sequence: 5 internal/dummy
// reads followed by the reset vector fetch, landing PC at $FFFC/$FFFD.
func (c *CPU) Reset() {
	c.SP -= 3
	c.I = true
	c.halted = false
	c.queue = []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP+3)) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP+2)) },
		func(c *CPU) { c.bus.Read(0x0100 + uint16(c.SP+1)) },
		func(c *CPU) { c.ptr = uint16(c.bus.Read(0xFFFC)) },
		func(c *CPU) {
			hi := uint16(c.bus.Read(0xFFFD))
			c.PC = hi<<8 | c.ptr
		},
	}
	c.qi = 0
}

// Tick consumes exactly one bus cycle.
func (c *CPU) Tick() {
	c.cycles++

	if c.qi < len(c.queue) {
		op := c.queue[c.qi]
		c.qi++
		op(c)
		// Interrupt lines are sampled at the second-to-last cycle of
		// every instruction. The queue can grow at runtime (page-cross
		// and branch extra cycles are appended lazily), so this checks
		// against the queue's length as of right now rather than a
		// length fixed at decode time. Two-cycle instructions (a
		// one-element queue) are polled by fetch instead, because their
		// opcode fetch is the second-to-last cycle.
		if !c.polled {
			if c.qi == len(c.queue)-1 || c.qi == len(c.queue) {
				c.pollInterrupts()
				c.polled = true
			}
		}
		return
	}

	if c.halted {
		c.bus.Read(c.PC) // KIL spins, continuing to assert the address bus
		return
	}

	if c.servicePending {
		c.bus.Read(c.PC) // dispatch cycle: first dummy read
		c.beginInterrupt(c.serviceIsNMI)
		c.servicePending = false
		return
	}

	c.fetch()
}

// fetch reads the next opcode, decodes its addressing mode, and builds
// the micro-op queue for the remaining cycles of the instruction.
func (c *CPU) fetch() {
	c.opcode = c.bus.Read(c.PC)
	c.PC++
	inst := c.instructions[c.opcode]
	if inst.exec == nil && inst.special == nil && inst.cond == nil && inst.kind != kindKil {
		inst = instruction{name: "KIL", kind: kindKil}
	}
	c.queue = inst.build(c)
	c.qi = 0
	c.polled = false
	if len(c.queue) == 0 {
		// KIL: nothing left to do this instruction.
		c.polled = true
	}
	if len(c.queue) == 1 {
		// Two-cycle instruction: poll now, before its last cycle runs, so
		// an I-flag change by CLI or SEI only affects the next poll.
		c.pollInterrupts()
		c.polled = true
	}
}

func (c *CPU) pollInterrupts() {
	if c.nmiPending {
		c.servicePending = true
		c.serviceIsNMI = true
		return
	}
	if c.irqSources != 0 && !c.I {
		c.servicePending = true
		c.serviceIsNMI = false
		return
	}
	c.servicePending = false
}

// beginInterrupt builds the 7-cycle (including the already-consumed
// dispatch cycle) hardware interrupt sequence: 2 dummy reads, push
// PCH/PCL/P, fetch vector low/high. The vector is resolved lazily at the
// last two micro-ops so an NMI that arrives mid-dispatch can hijack the
// vector, the general case BRK's documented NMI hijack is an instance of.
func (c *CPU) beginInterrupt(isNMI bool) {
	c.vectorResolved = false
	if isNMI {
		c.nmiPending = false
	}
	c.queue = []microOp{
		func(c *CPU) { c.bus.Read(c.PC) },
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC)) },
		func(c *CPU) { c.push(c.statusForPush(false)) },
		func(c *CPU) {
			vec := c.vectorFor(isNMI)
			c.I = true
			c.ptr = uint16(c.bus.Read(vec))
		},
		func(c *CPU) {
			vec := c.vectorFor(isNMI) + 1
			hi := uint16(c.bus.Read(vec))
			c.PC = hi<<8 | c.ptr
		},
	}
	c.qi = 0
	c.polled = true // interrupt dispatch does not itself poll for further interrupts
}

// vectorFor resolves which vector an in-flight interrupt dispatch should
// use, re-checked at the moment the vector bytes are actually fetched so
// a same-cycle NMI can hijack an IRQ/BRK vector fetch in progress.
func (c *CPU) vectorFor(isNMI bool) uint16 {
	if !c.vectorResolved {
		c.vectorIsNMI = isNMI || c.nmiPending
		if c.vectorIsNMI {
			c.nmiPending = false
		}
		c.vectorResolved = true
	}
	if c.vectorIsNMI {
		return 0xFFFA
	}
	return 0xFFFE
}

func (c *CPU) push(value uint8) {
	c.bus.Write(0x0100+uint16(c.SP), value)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.bus.Read(0x0100 + uint16(c.SP))
}

// statusForPush packs the P register as it appears on the stack: bit 5
// always set, bit 4 (B) set only for PHP/BRK, clear for hardware
// interrupts.
func (c *CPU) statusForPush(breakFlag bool) uint8 {
	var p uint8
	if c.N {
		p |= 0x80
	}
	if c.V {
		p |= 0x40
	}
	p |= 0x20
	if breakFlag {
		p |= 0x10
	}
	if c.D {
		p |= 0x08
	}
	if c.I {
		p |= 0x04
	}
	if c.Z {
		p |= 0x02
	}
	if c.C {
		p |= 0x01
	}
	return p
}

// GetStatusByte returns the P register with bit 5 set and bit 4 clear,
// as it reads when pulled by PLP/RTI.
func (c *CPU) GetStatusByte() uint8 { return c.statusForPush(false) }

// SetStatusByte unpacks a P register value into the individual flags.
func (c *CPU) SetStatusByte(p uint8) {
	c.N = p&0x80 != 0
	c.V = p&0x40 != 0
	c.D = p&0x08 != 0
	c.I = p&0x04 != 0
	c.Z = p&0x02 != 0
	c.C = p&0x01 != 0
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

// AtInstructionBoundary reports whether the micro-op queue is empty,
// i.e. the next Tick will either dispatch an interrupt or fetch a new
// opcode. Snapshot/Restore only operate at this boundary, so the
// in-flight micro-op queue never needs to be serialized.
func (c *CPU) AtInstructionBoundary() bool { return c.qi >= len(c.queue) }

// State is the serializable snapshot of CPU state at an instruction
// boundary.
type State struct {
	A, X, Y, SP                      uint8
	PC                                uint16
	N, V, D, I, Z, C                  bool
	Cycles                            uint64
	NMILine, NMIPrevLine, NMIPending  bool
	IRQSources                        IRQSource
	ServicePending, ServiceIsNMI      bool
	Halted                            bool
}

// SaveState captures the CPU's register and interrupt-latch state. It
// must only be called when AtInstructionBoundary is true.
func (c *CPU) SaveState() State {
	return State{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC,
		N: c.N, V: c.V, D: c.D, I: c.I, Z: c.Z, C: c.C,
		Cycles:         c.cycles,
		NMILine:        c.nmiLine,
		NMIPrevLine:    c.nmiPrevLine,
		NMIPending:     c.nmiPending,
		IRQSources:     c.irqSources,
		ServicePending: c.servicePending,
		ServiceIsNMI:   c.serviceIsNMI,
		Halted:         c.halted,
	}
}

// LoadState restores a previously captured State. The micro-op queue is
// reset to empty, so the next Tick dispatches a pending interrupt or
// fetches fresh, exactly as if the snapshot were taken a cycle earlier.
func (c *CPU) LoadState(s State) {
	c.A, c.X, c.Y, c.SP, c.PC = s.A, s.X, s.Y, s.SP, s.PC
	c.N, c.V, c.D, c.I, c.Z, c.C = s.N, s.V, s.D, s.I, s.Z, s.C
	c.cycles = s.Cycles
	c.nmiLine, c.nmiPrevLine, c.nmiPending = s.NMILine, s.NMIPrevLine, s.NMIPending
	c.irqSources = s.IRQSources
	c.servicePending, c.serviceIsNMI = s.ServicePending, s.ServiceIsNMI
	c.halted = s.Halted
	c.queue = nil
	c.qi = 0
	c.polled = true
}
