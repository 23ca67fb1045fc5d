// Package bus wires the CPU, PPU, APU, cartridge, and controller ports
// into one NES system: it owns the component instances, drives the
// cycle-by-cycle Tick loop (1 CPU cycle = 3 PPU dots = 1 APU half-step),
// and arbitrates the DMA unit's cycle stealing against the CPU.
package bus

import (
	"fmt"

	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/dma"
	"nesgo/internal/genie"
	"nesgo/internal/input"
	"nesgo/internal/logdiag"
	"nesgo/internal/memory"
	"nesgo/internal/ppu"
	"nesgo/internal/state"
)

// Bus connects every NES component and drives the system clock.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Cart   *cartridge.Cartridge
	Mem    *memory.Memory
	PPUMem *memory.PPUMemory
	Input  *input.InputState
	DMA    *dma.Controller
	Genie  *genie.Table

	cpuCycles uint64

	frameDone bool

	breakpoints map[uint16]bool
	breakHit    bool
	breakReason string
}

// New creates a Bus with no cartridge loaded. Load must be called before
// StepCycle will do anything useful.
func New() *Bus {
	b := &Bus{
		Input:       input.NewInputState(),
		Genie:       genie.NewTable(),
		breakpoints: make(map[uint16]bool),
	}
	b.PPU = ppu.New()
	b.APU = apu.New()
	return b
}

// Load installs a cartridge, rebuilding the memory maps and mapper-
// dependent wiring (A12 clock for scanline-counter mappers, mapper IRQ
// line, PPU nametable mirroring). It does not reset CPU registers;
// callers normally follow Load with Reset.
func (b *Bus) Load(cart *cartridge.Cartridge) {
	b.Cart = cart

	b.Mem = memory.New(b.PPU, b.APU, b.Input, cart)
	b.Mem.SetDMATrigger(b)
	b.Mem.SetGenieHook(b.Genie.Apply)

	b.PPUMem = memory.NewPPUMemory(cart)
	b.PPU.SetMemory(b.PPUMem)

	b.CPU = cpu.New(b.Mem)
	b.DMA = dma.New(b.Mem, b.PPU)

	b.PPU.SetNMICallback(b.CPU.SetNMILine)
	b.PPU.SetA12Callback(b.Cart.Tick)
	b.PPU.SetFrameCompleteCallback(b.onFrameComplete)
	b.Cart.SetIRQLine(func(asserted bool) { b.CPU.SetIRQ(cpu.IRQMapper, asserted) })
}

// Reset performs a power-on or console reset: it reinitializes the CPU,
// PPU, APU and controller latches, then runs the CPU's 7-cycle reset
// sequence (with the PPU and APU clocked alongside) so that on return
// the CPU sits at the reset vector, ready to fetch its first opcode. The
// cycle counter starts from zero after that sequence. hard is ignored:
// neither kind of reset clears CPU RAM, PPU OAM or VRAM.
func (b *Bus) Reset(hard bool) {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	for !b.CPU.AtInstructionBoundary() {
		b.StepCycle()
	}
	b.cpuCycles = 0
	b.frameDone = false
	b.breakHit = false
	b.breakReason = ""
	_ = hard
}

// onFrameComplete is invoked by the PPU once per frame, at vblank entry
// (scanline 241, dot 1).
func (b *Bus) onFrameComplete() {
	b.frameDone = true
}

// TriggerOAMDMA implements memory.DMATrigger, called on a $4014 write.
func (b *Bus) TriggerOAMDMA(page uint8) {
	b.DMA.RequestOAM(page, b.cpuCycles%2 == 1)
}

// StepCycle advances the system by exactly one CPU cycle: 3 PPU dots,
// one APU half-step, and either one DMA-stolen cycle or one CPU Tick,
// whichever the DMA controller's Active state calls for. DMC DMA
// requests are serviced here too, ahead of the CPU/DMA tick, so a
// sample byte arrives the same cycle real hardware would steal it.
func (b *Bus) StepCycle() {
	for i := 0; i < 3; i++ {
		b.PPU.Tick()
	}

	b.APU.Step()

	if address, pending := b.APU.DMCFetchRequest(); pending && !b.DMA.DMCBusy() {
		b.DMA.RequestDMC(address, b.APU.ProvideDMCByte)
	}

	b.CPU.SetIRQ(cpu.IRQFrameCounter, b.APU.GetFrameIRQ())
	b.CPU.SetIRQ(cpu.IRQDMC, b.APU.GetDMCIRQ())

	if b.DMA.Active() {
		b.DMA.Tick()
	} else {
		b.CPU.Tick()
	}

	b.cpuCycles++

	if b.CPU.AtInstructionBoundary() && b.breakpoints[b.CPU.PC] {
		b.breakHit = true
		b.breakReason = fmt.Sprintf("breakpoint at $%04X", b.CPU.PC)
	}
}

// StepCycles advances the system by exactly n CPU cycles.
func (b *Bus) StepCycles(n uint64) {
	for i := uint64(0); i < n; i++ {
		b.StepCycle()
	}
}

// StepFrame runs until the PPU signals frame completion or a breakpoint
// is hit, whichever comes first.
func (b *Bus) StepFrame() {
	b.frameDone = false
	for !b.frameDone && !b.breakHit {
		b.StepCycle()
	}
}

// FrameBuffer returns the PPU's completed front buffer, 256x240 packed
// 0xRRGGBB values.
func (b *Bus) FrameBuffer() *[ppu.Width * ppu.Height]uint32 {
	return b.PPU.FrameBuffer()
}

// PullAudio drains up to len(out) queued audio samples into out,
// returning how many were written.
func (b *Bus) PullAudio(out []float32) int {
	return b.APU.PullAudio(out)
}

// SetInput replaces both controllers' button states at once.
func (b *Bus) SetInput(controller1, controller2 [8]bool) {
	b.Input.SetButtons1(controller1)
	b.Input.SetButtons2(controller2)
}

// AddGenieCode activates a Game Genie code, returning its canonical form.
func (b *Bus) AddGenieCode(code string) (string, error) {
	return b.Genie.Add(code)
}

// RemoveGenieCode deactivates a previously added Game Genie code.
func (b *Bus) RemoveGenieCode(code string) {
	b.Genie.Remove(code)
}

// SetBreakpoint arms or disarms a PC-address breakpoint.
func (b *Bus) SetBreakpoint(address uint16, enabled bool) {
	if enabled {
		b.breakpoints[address] = true
	} else {
		delete(b.breakpoints, address)
	}
}

// PollBreakReason reports and clears the reason the last StepFrame
// stopped early due to a breakpoint, or "" if none did.
func (b *Bus) PollBreakReason() string {
	reason := b.breakReason
	b.breakHit = false
	b.breakReason = ""
	return reason
}

// Snapshot captures a save state. It only succeeds at an instruction
// boundary; callers that need a snapshot mid-frame should keep calling
// StepCycle until AtInstructionBoundary is true (at most a few cycles).
func (b *Bus) Snapshot() ([]byte, error) {
	if !b.CPU.AtInstructionBoundary() {
		return nil, fmt.Errorf("bus: snapshot requested mid-instruction")
	}
	codes := make([]string, 0, len(b.Genie.Codes()))
	for _, c := range b.Genie.Codes() {
		codes = append(codes, c.Raw)
	}
	snap := state.Snapshot{
		CPU:        b.CPU.SaveState(),
		PPU:        b.PPU.SaveState(),
		APU:        b.APU.SaveState(),
		Memory:     b.Mem.SaveState(),
		PPUMem:     b.PPUMem.SaveState(),
		Input:      b.Input.SaveState(),
		Mapper:     b.Cart.SaveState(),
		GenieCodes: codes,
	}
	return state.Encode(snap)
}

// Restore loads a previously captured Snapshot. The cartridge must
// already be loaded via Load; only mutable mapper registers and PRG-RAM
// are restored, not PRG/CHR ROM contents.
func (b *Bus) Restore(data []byte) error {
	snap, err := state.Decode(data)
	if err != nil {
		return err
	}
	b.CPU.LoadState(snap.CPU)
	b.PPU.LoadState(snap.PPU)
	b.APU.LoadState(snap.APU)
	b.Mem.LoadState(snap.Memory)
	b.PPUMem.LoadState(snap.PPUMem)
	b.Input.LoadState(snap.Input)
	b.Cart.LoadState(snap.Mapper)

	b.Genie = genie.NewTable()
	for _, code := range snap.GenieCodes {
		if _, err := b.Genie.Add(code); err != nil {
			logdiag.Warnf("bus: restoring genie code %q: %v", code, err)
		}
	}
	b.Mem.SetGenieHook(b.Genie.Apply)

	return nil
}
