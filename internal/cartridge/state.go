package cartridge

// MapperState is a serializable snapshot of a mapper's bank-switching
// registers. PRG/CHR ROM contents are not part of it: restoring a
// snapshot assumes the same ROM file has already been reloaded, so only
// the mutable registers hardware actually latches need to travel.
type MapperState struct {
	MapperID uint8

	PRGRAM []uint8

	// MMC1
	Shift, ShiftCount, Control, CHRBank0, CHRBank1, PRGBank uint8

	// UxROM / CNROM / AxROM / GxROM
	Bank, PRGBankSel, CHRBankSel uint8
	SingleMirror                 MirrorMode

	// MMC3
	BankSelect            uint8
	BankData              [8]uint8
	MMC3Mirror            uint8
	IRQLatch, IRQCounter  uint8
	IRQReload, IRQEnabled bool
	PrevA12               bool
	A12LowDots            int
}

// SaveState captures the active mapper's bank-switching registers.
func (c *Cartridge) SaveState() MapperState {
	s := MapperState{MapperID: c.mapperID}
	switch m := c.mapper.(type) {
	case *Mapper001:
		s.Shift, s.ShiftCount = m.shift, m.shiftCount
		s.Control, s.CHRBank0, s.CHRBank1, s.PRGBank = m.control, m.chrBank0, m.chrBank1, m.prgBank
		s.PRGRAM = append([]uint8(nil), m.prgRAM[:]...)
	case *Mapper002:
		s.Bank = m.bank
	case *Mapper003:
		s.CHRBankSel = m.chrBank
	case *Mapper004:
		s.BankSelect = m.bankSelect
		s.BankData = m.bankData
		s.MMC3Mirror = m.mirror
		s.IRQLatch, s.IRQCounter = m.irqLatch, m.irqCounter
		s.IRQReload, s.IRQEnabled = m.irqReload, m.irqEnabled
		s.PrevA12, s.A12LowDots = m.prevA12, m.a12LowDots
		s.PRGRAM = append([]uint8(nil), m.prgRAM[:]...)
	case *Mapper007:
		s.Bank = m.bank
		s.SingleMirror = m.mirror
	case *Mapper066:
		s.PRGBankSel, s.CHRBankSel = m.prgBank, m.chrBank
	case *NSFMapper:
		s.PRGRAM = append([]uint8(nil), m.prgRAM[:]...)
	}
	if s.PRGRAM == nil {
		// Mappers without their own RAM use the cartridge's $6000-$7FFF SRAM.
		s.PRGRAM = append([]uint8(nil), c.sram[:]...)
	}
	return s
}

// LoadState restores a previously captured MapperState into the active
// mapper. The cartridge must already be the same one the state was
// captured from (same ROM, same mapper ID).
func (c *Cartridge) LoadState(s MapperState) {
	switch m := c.mapper.(type) {
	case *Mapper001:
		m.shift, m.shiftCount = s.Shift, s.ShiftCount
		m.control, m.chrBank0, m.chrBank1, m.prgBank = s.Control, s.CHRBank0, s.CHRBank1, s.PRGBank
		copy(m.prgRAM[:], s.PRGRAM)
	case *Mapper002:
		m.bank = s.Bank
	case *Mapper003:
		m.chrBank = s.CHRBankSel
	case *Mapper004:
		m.bankSelect = s.BankSelect
		m.bankData = s.BankData
		m.mirror = s.MMC3Mirror
		m.irqLatch, m.irqCounter = s.IRQLatch, s.IRQCounter
		m.irqReload, m.irqEnabled = s.IRQReload, s.IRQEnabled
		m.prevA12, m.a12LowDots = s.PrevA12, s.A12LowDots
		copy(m.prgRAM[:], s.PRGRAM)
	case *Mapper007:
		m.bank = s.Bank
		m.mirror = s.SingleMirror
	case *Mapper066:
		m.prgBank, m.chrBank = s.PRGBankSel, s.CHRBankSel
	}
	switch m := c.mapper.(type) {
	case *Mapper001, *Mapper004:
	case *NSFMapper:
		copy(m.prgRAM[:], s.PRGRAM)
	default:
		copy(c.sram[:], s.PRGRAM)
	}
}
