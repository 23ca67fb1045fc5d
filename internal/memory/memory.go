// Package memory implements the CPU and PPU address-space routing tables:
// RAM mirroring, the PPU/APU/IO register window, cartridge PRG/CHR
// delegation, nametable and palette mirroring, and the CPU open-bus
// latch (the last value driven on the data bus; it does not decay).
package memory

import "nesgo/internal/logdiag"

// PPUInterface is the subset of the PPU the CPU bus needs to reach
// through the $2000-$3FFF register window.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the subset of the APU the CPU bus needs to reach
// through the $4000-$4017 register window.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the controller port window at $4016/$4017.
type InputInterface interface {
	Read(port int) uint8
	Write(value uint8)
}

// CartridgeInterface is the subset of cartridge.Cartridge the bus needs.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirror() MirrorMode
}

// DMATrigger is called when the CPU writes $4014 (OAM DMA).
type DMATrigger interface {
	TriggerOAMDMA(page uint8)
}

// MirrorMode mirrors cartridge.MirrorMode without importing the cartridge
// package, avoiding an import cycle (cartridge never needs to import
// memory).
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// GenieHook lets internal/genie intercept PRG reads before they reach the
// caller. memory depends on this function type rather than on the genie
// package, so genie installs itself here instead of memory importing genie.
type GenieHook func(address uint16, value uint8) uint8

// Memory is the CPU's view of the address space.
type Memory struct {
	ram       [0x800]uint8
	ppu       PPUInterface
	apu       APUInterface
	input     InputInterface
	cartridge CartridgeInterface
	dma       DMATrigger
	openBus   uint8
	genie     GenieHook
}

// New creates a Memory with the given PPU/APU/input/cartridge backends.
func New(ppu PPUInterface, apu APUInterface, input InputInterface, cart CartridgeInterface) *Memory {
	m := &Memory{ppu: ppu, apu: apu, input: input, cartridge: cart}
	m.initializePowerOnRAM()
	return m
}

// SetDMATrigger wires the OAM DMA handler (normally internal/bus).
func (m *Memory) SetDMATrigger(d DMATrigger) { m.dma = d }

// SetGenieHook installs a Game Genie PRG-read patcher.
func (m *Memory) SetGenieHook(h GenieHook) { m.genie = h }

// initializePowerOnRAM mimics typical hardware power-on RAM contents
// (alternating 0xFF/0x00 runs); software that depends on zeroed RAM
// without initializing it is exposed as buggy, matching real consoles.
func (m *Memory) initializePowerOnRAM() {
	for i := range m.ram {
		if i%8 < 4 {
			m.ram[i] = 0xFF
		} else {
			m.ram[i] = 0x00
		}
	}
}

// Read implements the CPU's $0000-$FFFF address space.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]
	case address < 0x4000:
		value = m.ppu.ReadRegister(0x2000 + address&0x0007)
	case address == 0x4015:
		value = m.apu.ReadStatus()
	case address == 0x4016:
		value = m.input.Read(0)
	case address == 0x4017:
		value = m.input.Read(1)
	case address < 0x4020:
		value = m.openBus
	default:
		value = m.cartridge.ReadPRG(address)
		if m.genie != nil {
			value = m.genie(address, value)
		}
	}
	m.openBus = value
	return value
}

// Write implements the CPU's $0000-$FFFF address space.
func (m *Memory) Write(address uint16, value uint8) {
	m.openBus = value
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value
	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+address&0x0007, value)
	case address == 0x4014:
		if m.dma != nil {
			m.dma.TriggerOAMDMA(value)
		}
	case address == 0x4016:
		m.input.Write(value)
	case address < 0x4018:
		m.apu.WriteRegister(address, value)
	case address < 0x4020:
		// APU/IO test mode, unmapped on retail hardware.
	default:
		m.cartridge.WritePRG(address, value)
	}
}

// OAMDMAByte reads the byte the DMA sequencer copies into OAM for a given
// page/offset.
func (m *Memory) OAMDMAByte(page uint8, offset uint8) uint8 {
	return m.Read(uint16(page)<<8 | uint16(offset))
}

// PPUMemory is the PPU's own view of its $0000-$3FFF address space:
// pattern tables (delegated to the cartridge), nametables, and palette RAM.
type PPUMemory struct {
	vram       [0x1000]uint8
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
}

// NewPPUMemory creates a PPUMemory bound to the given cartridge.
func NewPPUMemory(cart CartridgeInterface) *PPUMemory {
	return &PPUMemory{cartridge: cart}
}

// Read implements the PPU's $0000-$3FFF address space.
func (p *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return p.cartridge.ReadCHR(address)
	case address < 0x3F00:
		return p.vram[p.nametableIndex(address)]
	default:
		return p.readPalette(address)
	}
}

// Write implements the PPU's $0000-$3FFF address space.
func (p *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		p.cartridge.WriteCHR(address, value)
	case address < 0x3F00:
		p.vram[p.nametableIndex(address)] = value
	default:
		p.writePalette(address, value)
	}
}

// nametableIndex maps a $2000-$3EFF address into the 4KB physical VRAM
// array according to the cartridge's mirroring mode.
func (p *PPUMemory) nametableIndex(address uint16) uint16 {
	offset := (address - 0x2000) & 0x0FFF
	table := offset / 0x0400
	cell := offset % 0x0400

	switch p.cartridge.Mirror() {
	case MirrorHorizontal:
		return (table/2)*0x0400 + cell // tables 0,1 -> physical 0; 2,3 -> physical 1
	case MirrorVertical:
		return (table%2)*0x0400 + cell // tables 0,2 -> physical 0; 1,3 -> physical 1
	case MirrorSingleScreen0:
		return cell
	case MirrorSingleScreen1:
		return 0x0400 + cell
	default: // MirrorFourScreen
		return table*0x0400 + cell
	}
}

// readPalette implements the $3F00-$3FFF mirrored palette RAM window,
// including the $10/$14/$18/$1C backdrop-color mirrors.
func (p *PPUMemory) readPalette(address uint16) uint8 {
	return p.paletteRAM[paletteIndex(address)]
}

func (p *PPUMemory) writePalette(address uint16, value uint8) {
	p.paletteRAM[paletteIndex(address)] = value & 0x3F
}

func paletteIndex(address uint16) uint16 {
	index := address & 0x1F
	if index >= 0x10 && index%4 == 0 {
		index -= 0x10
	}
	return index
}

// warnUnmapped logs an unmapped access through the logdiag sink. It has
// no callers.
func warnUnmapped(kind string, address uint16) {
	logdiag.Warnf("unmapped %s access at $%04X", kind, address)
}
