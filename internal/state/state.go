// Package state implements the save-state codec: a flat snapshot of
// every component's serializable state, encoded with encoding/gob into
// a single opaque blob (the same idiom the cartridge loader uses for
// its binary iNES header).
package state

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/memory"
	"nesgo/internal/ppu"
)

const currentVersion = 1

// Snapshot mirrors the machine's full data model: CPU/PPU/APU register
// and timing state, CPU RAM and PPU VRAM/palette, controller latches,
// and the active mapper's bank-switching registers. It assumes the
// same ROM is already loaded; PRG/CHR ROM contents are not included.
type Snapshot struct {
	Version int

	CPU    cpu.State
	PPU    ppu.State
	APU    apu.State
	Memory memory.State
	PPUMem memory.PPUMemoryState
	Input  input.PairState
	Mapper cartridge.MapperState

	GenieCodes []string
}

// Encode serializes a Snapshot into an opaque byte slice.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = currentVersion
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("state: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a snapshot previously produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("state: decode: %w", err)
	}
	if s.Version != currentVersion {
		return Snapshot{}, fmt.Errorf("state: unsupported snapshot version %d", s.Version)
	}
	return s, nil
}
