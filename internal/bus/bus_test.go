package bus

import (
	"bytes"
	"testing"

	"nesgo/internal/cartridge"
)

// buildNROM assembles a minimal one-bank NROM (mapper 0) iNES image with
// the given PRG bytes placed at the start of the bank, and the reset
// vector pointed at PRG address 0 (CPU $8000).
func buildNROM(prg []uint8) []byte {
	bank := make([]uint8, 16384)
	copy(bank, prg)
	// Reset vector: $FFFC/$FFFD, relative to the end of the 16KB bank.
	bank[16384-4] = 0x00
	bank[16384-3] = 0x80

	header := []byte{'N', 'E', 'S', 0x1A, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(bank)
	return buf.Bytes()
}

func loadTestBus(t *testing.T, prg []uint8) *Bus {
	t.Helper()
	cart, err := cartridge.LoadFromReader(bytes.NewReader(buildNROM(prg)))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	b := New()
	b.Load(cart)
	b.Reset(true)
	return b
}

func TestResetVectorsCPUIntoPRG(t *testing.T) {
	b := loadTestBus(t, []uint8{0xEA}) // NOP
	if b.CPU.PC != 0x8000 {
		t.Fatalf("PC after reset = $%04X, want $8000", b.CPU.PC)
	}
}

func TestStepCyclesAdvancesCPUAndPPU(t *testing.T) {
	b := loadTestBus(t, []uint8{0xEA, 0xEA, 0xEA, 0x4C, 0x00, 0x80}) // NOP NOP NOP JMP $8000
	startFrame := b.PPU.FrameCount()
	b.StepCycles(200000)
	if b.cpuCycles != 200000 {
		t.Fatalf("cpuCycles = %d, want 200000", b.cpuCycles)
	}
	if b.PPU.FrameCount() == startFrame {
		t.Fatalf("expected at least one completed frame after 200000 CPU cycles")
	}
}

func TestOAMDMAStallsCPU(t *testing.T) {
	// LDA #$02; STA $4014 (page $02 OAM DMA); NOP forever.
	b := loadTestBus(t, []uint8{0xA9, 0x02, 0x8D, 0x14, 0x40, 0xEA, 0x4C, 0x05, 0x80})
	// Run past the two setup instructions (2 + 4 cycles) so the DMA request lands.
	b.StepCycles(6)
	if !b.DMA.Active() {
		t.Fatalf("expected OAM DMA to be active after $4014 write")
	}
	// 514 cycles covers the worst case (odd-cycle trigger); give it margin.
	b.StepCycles(600)
	if b.DMA.Active() {
		t.Fatalf("expected OAM DMA to have completed by now")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	b := loadTestBus(t, []uint8{0xA9, 0x42, 0xEA, 0x4C, 0x02, 0x80}) // LDA #$42; loop NOP
	b.StepCycles(2)                                                 // complete the LDA
	if !b.CPU.AtInstructionBoundary() {
		t.Fatalf("expected instruction boundary after LDA completes")
	}
	data, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	wantA := b.CPU.A

	b.StepCycles(1000) // perturb state

	if err := b.Restore(data); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if b.CPU.A != wantA {
		t.Fatalf("CPU.A after restore = %d, want %d", b.CPU.A, wantA)
	}
	if b.CPU.PC != 0x8002 {
		t.Fatalf("CPU.PC after restore = $%04X, want $8002", b.CPU.PC)
	}
}

func TestGenieCodeAddRemove(t *testing.T) {
	b := loadTestBus(t, []uint8{0xEA})
	canon, err := b.AddGenieCode("SXIOPO")
	if err != nil {
		t.Fatalf("AddGenieCode: %v", err)
	}
	if len(b.Genie.Codes()) != 1 {
		t.Fatalf("expected 1 active genie code")
	}
	b.RemoveGenieCode(canon)
	if len(b.Genie.Codes()) != 0 {
		t.Fatalf("expected 0 active genie codes after remove")
	}
}

func TestBreakpointStopsStepFrame(t *testing.T) {
	b := loadTestBus(t, []uint8{0xEA, 0xEA, 0x4C, 0x00, 0x80}) // NOP NOP JMP $8000
	b.SetBreakpoint(0x8002, true)
	b.StepFrame()
	reason := b.PollBreakReason()
	if reason == "" {
		t.Fatalf("expected a breakpoint hit reason")
	}
	if b.CPU.PC != 0x8002 {
		t.Fatalf("PC at breakpoint = $%04X, want $8002", b.CPU.PC)
	}
}
