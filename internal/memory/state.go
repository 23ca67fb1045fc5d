package memory

// State is the serializable snapshot of CPU-visible RAM and open-bus
// latch. The PPU/APU/cartridge/input backends snapshot themselves.
type State struct {
	RAM     [0x800]uint8
	OpenBus uint8
}

// SaveState captures CPU RAM and the open-bus latch.
func (m *Memory) SaveState() State {
	return State{RAM: m.ram, OpenBus: m.openBus}
}

// LoadState restores a previously captured State.
func (m *Memory) LoadState(s State) {
	m.ram = s.RAM
	m.openBus = s.OpenBus
}

// PPUMemoryState is the serializable snapshot of the PPU's VRAM and
// palette RAM.
type PPUMemoryState struct {
	VRAM       [0x1000]uint8
	PaletteRAM [32]uint8
}

// SaveState captures nametable VRAM and palette RAM.
func (p *PPUMemory) SaveState() PPUMemoryState {
	return PPUMemoryState{VRAM: p.vram, PaletteRAM: p.paletteRAM}
}

// LoadState restores a previously captured PPUMemoryState.
func (p *PPUMemory) LoadState(s PPUMemoryState) {
	p.vram = s.VRAM
	p.paletteRAM = s.PaletteRAM
}
