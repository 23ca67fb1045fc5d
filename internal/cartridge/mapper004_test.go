package cartridge

import "testing"

func newTestMMC3() (*Cartridge, *Mapper004) {
	cart := &Cartridge{
		prgROM: make([]uint8, 0x8000), // 4x 8KB banks
		chrROM: make([]uint8, 0x2000), // 8x 1KB banks
	}
	m := NewMapper004(cart)
	cart.mapper = m
	return cart, m
}

// clockA12RisingEdge drives lowDots PPU dots with A12 held low, then one dot with it high,
// mirroring a CHR fetch that pulls the address bus above $1000.
func clockA12RisingEdge(m *Mapper004, lowDots int) {
	for i := 0; i < lowDots; i++ {
		m.Tick(false)
	}
	m.Tick(true)
}

func TestMMC3IRQClocksOnFilteredRisingEdge(t *testing.T) {
	_, m := newTestMMC3()
	m.irqLatch = 4
	m.irqEnabled = true
	m.irqCounter = 0
	m.irqReload = true

	fired := false
	m.cart.SetIRQLine(func(asserted bool) {
		if asserted {
			fired = true
		}
	})

	// Reload happens on the first qualifying edge; counter becomes the
	// latch value (4), not zero, so IRQ does not fire yet.
	clockA12RisingEdge(m, mmc3A12FilterDots)
	if fired {
		t.Fatal("IRQ fired on reload edge, want counter reloaded to latch value")
	}
	if m.irqCounter != 4 {
		t.Fatalf("irqCounter = %d, want 4 after reload", m.irqCounter)
	}

	// Four more qualifying edges count the counter down 4,3,2,1,0.
	for i := 0; i < 4; i++ {
		clockA12RisingEdge(m, mmc3A12FilterDots)
	}
	if !fired {
		t.Fatal("IRQ did not fire when counter reached zero")
	}
}

func TestMMC3IRQIgnoresShortLowPeriod(t *testing.T) {
	_, m := newTestMMC3()
	m.irqLatch = 1
	m.irqCounter = 1
	m.irqEnabled = true

	fired := false
	m.cart.SetIRQLine(func(asserted bool) { fired = fired || asserted })

	// A12 bounces back high before the filter's low-time threshold: real
	// hardware (and this filter) must not count this as a clock.
	clockA12RisingEdge(m, mmc3A12FilterDots-1)
	if m.irqCounter != 1 {
		t.Fatalf("irqCounter = %d, want unchanged 1 (edge should be filtered)", m.irqCounter)
	}
	if fired {
		t.Fatal("IRQ fired on a filtered (too-short low time) edge")
	}
}

func TestMMC3DisableIRQDeassertsLine(t *testing.T) {
	_, m := newTestMMC3()
	asserted := true
	m.cart.SetIRQLine(func(v bool) { asserted = v })
	m.WritePRG(0xE000, 0) // even address: disable + acknowledge
	if asserted {
		t.Fatal("writing $E000 should deassert the IRQ line")
	}
	if m.irqEnabled {
		t.Fatal("writing $E000 should clear irqEnabled")
	}
}

func TestMMC3MirroringRegister(t *testing.T) {
	_, m := newTestMMC3()
	m.WritePRG(0xA000, 0x01) // odd mirroring bit -> horizontal
	if m.Mirror() != MirrorHorizontal {
		t.Fatalf("Mirror() = %v, want horizontal", m.Mirror())
	}
	m.WritePRG(0xA000, 0x00)
	if m.Mirror() != MirrorVertical {
		t.Fatalf("Mirror() = %v, want vertical", m.Mirror())
	}
}
