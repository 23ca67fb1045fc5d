// Package dma sequences the 2A03's shared DMA unit: OAM DMA (a 256-byte,
// 513/514-cycle copy from CPU memory into PPU OAMDATA, triggered by a
// $4014 write) and DMC DMA (a 4-cycle cycle-steal that fetches one
// sample byte for the APU's delta-modulation channel). Both compete for
// the same CPU-halting hardware; DMC DMA always wins a contested cycle,
// matching the real chip.
package dma

// Reader reads a byte from the CPU's address space.
type Reader interface {
	Read(address uint16) uint8
}

// OAMWriter receives each byte an OAM DMA transfer copies, in order,
// written through OAMDATA so OAMADDR auto-increments exactly as it
// would for CPU-driven writes.
type OAMWriter interface {
	WriteOAM(value uint8)
}

// Controller sequences OAM and DMC DMA against a shared cycle budget.
type Controller struct {
	bus Reader
	oam OAMWriter

	oamPending bool
	oamPage    uint8
	oamByte    int  // next byte index, 0..255
	oamPhase   int  // 0 = next transfer cycle reads, 1 = next one writes oamLatch
	oamAlign   int  // extra alignment cycles (1 normally, 2 if triggered on an odd CPU cycle)
	oamLatch   uint8

	dmcPending  bool
	dmcAddress  uint16
	dmcCallback func(value uint8)
	dmcPhase    int // cycles remaining in the current DMC fetch
}

// New creates a DMA controller driving reads through r and OAM writes
// through w.
func New(r Reader, w OAMWriter) *Controller {
	return &Controller{bus: r, oam: w}
}

// RequestOAM begins an OAM DMA transfer from page*0x100..page*0x100+0xFF.
// cpuCycleOdd reflects whether the triggering $4014 write landed on an
// odd CPU cycle, which costs one extra alignment cycle.
func (c *Controller) RequestOAM(page uint8, cpuCycleOdd bool) {
	c.oamPending = true
	c.oamPage = page
	c.oamByte = 0
	c.oamPhase = 0
	c.oamAlign = 1
	if cpuCycleOdd {
		c.oamAlign = 2
	}
}

// RequestDMC begins a DMC sample fetch from address; done is called
// with the fetched byte once the 4-cycle steal completes.
func (c *Controller) RequestDMC(address uint16, done func(value uint8)) {
	c.dmcPending = true
	c.dmcAddress = address
	c.dmcCallback = done
	c.dmcPhase = 4
}

// Active reports whether a transfer is in progress or queued; the bus
// halts the CPU for every cycle this is true.
func (c *Controller) Active() bool {
	return c.oamPending || c.dmcPending
}

// DMCBusy reports whether a DMC fetch is already in flight, so the bus
// does not issue a second RequestDMC for the same byte every cycle the
// APU's request line stays asserted.
func (c *Controller) DMCBusy() bool {
	return c.dmcPending
}

// Tick consumes one bus cycle of DMA work. It returns true if the CPU
// was stalled this cycle (the bus must not call cpu.Tick). DMC DMA
// always makes progress ahead of OAM DMA when both are pending, exactly
// stealing the cycle the CPU would otherwise have used.
func (c *Controller) Tick() bool {
	if c.dmcPending {
		c.dmcPhase--
		if c.dmcPhase <= 0 {
			value := c.bus.Read(c.dmcAddress)
			c.dmcPending = false
			if c.dmcCallback != nil {
				c.dmcCallback(value)
			}
		}
		return true
	}

	if !c.oamPending {
		return false
	}

	if c.oamAlign > 0 {
		c.oamAlign--
		return true
	}

	if c.oamPhase == 0 {
		c.oamLatch = c.bus.Read(uint16(c.oamPage)<<8 | uint16(c.oamByte))
		c.oamPhase = 1
		return true
	}

	c.oam.WriteOAM(c.oamLatch)
	c.oamByte++
	c.oamPhase = 0
	if c.oamByte >= 256 {
		c.oamPending = false
	}
	return true
}
