package cartridge

import (
	"encoding/binary"
	"errors"
	"io"
)

// NSFHeader is the 128-byte NESM NSF 1.x header.
type NSFHeader struct {
	Magic           [5]uint8
	Version         uint8
	TotalSongs      uint8
	StartingSong    uint8
	LoadAddress     uint16
	InitAddress     uint16
	PlayAddress     uint16
	SongName        [32]uint8
	ArtistName      [32]uint8
	CopyrightHolder [32]uint8
	PlaySpeedNTSC   uint16
	BankInit        [8]uint8
	PlaySpeedPAL    uint16
	PALNTSCBits     uint8
	ExtraSoundChip  uint8
	Expansion       [4]uint8
}

// LoadNSFFromReader loads an NSF music file into a Cartridge whose PRG
// space is driven by the NSF bank-switching registers at $5FF8-$5FFF,
// matching the convention most NSF rips rely on (a player routine writes
// BankInit to those registers during Init, then relies on the same
// registers for any mid-song bank switches).
func LoadNSFFromReader(r io.Reader) (*Cartridge, error) {
	var header NSFHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.Magic[:]) != "NESM\x1A" {
		return nil, errors.New("invalid NSF file")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cart := &Cartridge{
		mirror: MirrorHorizontal,
		nsf:    &header,
	}
	cart.mapper = newNSFMapper(&header, data)
	return cart, nil
}

// NSFMapper implements Mapper for NSF playback: 8 x 4KB bank registers
// at $5FF8-$5FFF select which 4KB page of the flattened NSF image
// appears in each $8000-$FFFF window.
type NSFMapper struct {
	flat  [0x10000]uint8 // address-space image: flat[loadAddress+i] = data[i]
	regs  [8]uint8
	prgRAM [0x2000]uint8
}

func newNSFMapper(header *NSFHeader, data []uint8) *NSFMapper {
	m := &NSFMapper{}
	base := int(header.LoadAddress)
	for i, b := range data {
		addr := base + i
		if addr >= 0 && addr < 0x10000 {
			m.flat[addr] = b
		}
	}
	copy(m.regs[:], header.BankInit[:])
	return m
}

func (m *NSFMapper) page(index uint8) []uint8 {
	start := int(index) * 0x1000
	if start+0x1000 > len(m.flat) {
		return m.flat[:0]
	}
	return m.flat[start : start+0x1000]
}

func (m *NSFMapper) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		bank := (address - 0x8000) / 0x1000
		offset := address & 0x0FFF
		page := m.page(m.regs[bank])
		if int(offset) < len(page) {
			return page[offset]
		}
		return 0
	case address >= 0x6000:
		return m.prgRAM[address-0x6000]
	default:
		return 0
	}
}

func (m *NSFMapper) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x5FF8 && address <= 0x5FFF:
		m.regs[address-0x5FF8] = value
	case address >= 0x6000 && address < 0x8000:
		m.prgRAM[address-0x6000] = value
	}
}

func (m *NSFMapper) ReadCHR(address uint16) uint8        { return 0 }
func (m *NSFMapper) WriteCHR(address uint16, value uint8) {}
func (m *NSFMapper) Mirror() MirrorMode                   { return MirrorHorizontal }
func (m *NSFMapper) Tick(a12 bool)                        {}
