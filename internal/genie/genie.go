// Package genie decodes Game Genie codes and applies them as a PRG-read
// patch table, installed into internal/memory as a memory.GenieHook.
package genie

import (
	"fmt"
	"strings"
)

// letters is the Game Genie's 16-symbol alphabet; a code's position in
// this string is the 4-bit value that letter encodes.
const letters = "APZLGITYEOXUKSVN"

// Code is one decoded Game Genie entry: reads of Address return Value,
// or (for 8-letter codes) do so only when the ROM byte there equals
// Compare.
type Code struct {
	Raw        string
	Address    uint16
	Value      uint8
	Compare    uint8
	HasCompare bool
}

func letterValue(b byte) (int, bool) {
	i := strings.IndexByte(letters, b)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// Decode parses a 6- or 8-letter Game Genie code into its target
// address, replacement value, and optional compare byte.
func Decode(code string) (Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 6 && len(code) != 8 {
		return Code{}, fmt.Errorf("genie: code %q must be 6 or 8 letters", code)
	}
	n := make([]int, len(code))
	for i := 0; i < len(code); i++ {
		v, ok := letterValue(code[i])
		if !ok {
			return Code{}, fmt.Errorf("genie: invalid letter %q in code %q", code[i], code)
		}
		n[i] = v
	}

	out := Code{Raw: code}
	out.Address = 0x8000 |
		uint16(n[3]&0x7)<<12 |
		uint16(n[5]&0x7)<<8 | uint16(n[4]&0x8)<<8 |
		uint16(n[2]&0x7)<<4 | uint16(n[1]&0x8)<<4 |
		uint16(n[4]&0x7) | uint16(n[3]&0x8)
	out.Value = uint8((n[1]&0x7)<<4 | (n[0]&0x8)<<4 | n[0]&0x7)

	if len(code) == 6 {
		out.Value |= uint8(n[5] & 0x8)
		return out, nil
	}

	out.Value |= uint8(n[7] & 0x8)
	out.HasCompare = true
	out.Compare = uint8((n[7]&0x7)<<4 | (n[6]&0x8)<<4 | n[6]&0x7 | n[5]&0x8)
	return out, nil
}

// Table holds the set of currently active codes and applies them as a
// single PRG-read patch function.
type Table struct {
	codes map[string]Code
}

// NewTable creates an empty code table.
func NewTable() *Table {
	return &Table{codes: make(map[string]Code)}
}

// Add decodes and activates a code, returning its canonicalized (upper
// case) form for later use with Remove.
func (t *Table) Add(code string) (string, error) {
	c, err := Decode(code)
	if err != nil {
		return "", err
	}
	t.codes[c.Raw] = c
	return c.Raw, nil
}

// Remove deactivates a previously added code.
func (t *Table) Remove(code string) {
	delete(t.codes, strings.ToUpper(strings.TrimSpace(code)))
}

// Codes returns the currently active codes, in no particular order.
func (t *Table) Codes() []Code {
	out := make([]Code, 0, len(t.codes))
	for _, c := range t.codes {
		out = append(out, c)
	}
	return out
}

// Apply is the memory.GenieHook: it patches a PRG read at address when
// an active code targets it and, for 8-letter codes, the original value
// matches the code's compare byte.
func (t *Table) Apply(address uint16, value uint8) uint8 {
	for _, c := range t.codes {
		if c.Address != address {
			continue
		}
		if !c.HasCompare || c.Compare == value {
			return c.Value
		}
	}
	return value
}
