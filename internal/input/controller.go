// Package input implements the two NES controller ports at $4016/$4017:
// an 8-bit parallel-load shift register per pad, latched by the strobe
// bit and shifted out one bit per read.
package input

import "nesgo/internal/logdiag"

// Button identifies one of the 8 standard-pad buttons by its bit
// position in the shift register's parallel-load value.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is one standard NES controller: a live button-state latch
// plus the shift register the CPU reads one bit at a time.
type Controller struct {
	buttons uint8

	shiftRegister uint8
	strobe        bool
}

// New creates a Controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button's live state.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces all 8 button states at once, in A/B/Select/Start/
// Up/Down/Left/Right order.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= 1 << uint(i)
		}
	}
}

// IsPressed reports a single button's live state.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// latch parallel-loads the shift register from the live button state;
// called on strobe high and on every read while strobe stays high.
func (c *Controller) latch() {
	c.shiftRegister = c.buttons
}

// setStrobe updates the strobe line. NES controllers continuously
// reload the shift register from the live buttons while strobe is
// held high, rather than latching once on the falling edge.
func (c *Controller) setStrobe(high bool) {
	c.strobe = high
	if high {
		c.latch()
	}
}

// shift returns the next serial bit in bit 0 (bits 1-7 are zero; the
// port read adds the open-bus bits). Reads past the 8th bit return 1,
// as on most pads.
func (c *Controller) shift() uint8 {
	if c.strobe {
		c.latch()
	}
	bit := c.shiftRegister & 1
	c.shiftRegister = c.shiftRegister>>1 | 0x80
	return bit
}

func (c *Controller) reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
}

// Write drives the strobe line from bit 0 of a $4016 write.
func (c *Controller) Write(value uint8) { c.setStrobe(value&1 != 0) }

// Read returns the next serial bit in bit 0 with bit 6 set, as a
// $4016/$4017 read sees it.
func (c *Controller) Read() uint8 { return c.shift() | 0x40 }

// Reset clears the button state, the shift register and the strobe line.
func (c *Controller) Reset() { c.reset() }

// InputState is the $4016/$4017 controller-port pair; it satisfies
// memory.InputInterface.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates an InputState with two disconnected (unpressed)
// controllers.
func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

// Reset clears both controllers' button state, shift register and
// strobe line; the host's next SetButtons call supplies fresh input.
func (is *InputState) Reset() {
	is.Controller1.reset()
	is.Controller2.reset()
}

// SetButtons1 sets all button states for controller 1.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read implements memory.InputInterface: port 0 is $4016, port 1 is
// $4017. Bit 6 is set on both, matching the documented open-bus
// behavior on real hardware (only bit 0 of $4016/$4017 is driven).
// Any other port number logs a warning and reads as 0.
func (is *InputState) Read(port int) uint8 {
	var bit uint8
	switch port {
	case 0:
		bit = is.Controller1.shift()
	case 1:
		bit = is.Controller2.shift()
	default:
		logdiag.Warnf("controller read from unknown port %d", port)
		return 0
	}
	return bit | 0x40
}

// Write implements memory.InputInterface: $4016 bit 0 is the shared
// strobe line for both controllers.
func (is *InputState) Write(value uint8) {
	is.Controller1.setStrobe(value&1 != 0)
	is.Controller2.setStrobe(value&1 != 0)
}

// State is the serializable snapshot of one controller's latch state.
type State struct {
	Buttons       uint8
	ShiftRegister uint8
	Strobe        bool
}

func (c *Controller) saveState() State {
	return State{Buttons: c.buttons, ShiftRegister: c.shiftRegister, Strobe: c.strobe}
}

func (c *Controller) loadState(s State) {
	c.buttons, c.shiftRegister, c.strobe = s.Buttons, s.ShiftRegister, s.Strobe
}

// PairState is the serializable snapshot of both controller ports.
type PairState struct {
	Controller1, Controller2 State
}

// SaveState captures both controllers' latch state.
func (is *InputState) SaveState() PairState {
	return PairState{Controller1: is.Controller1.saveState(), Controller2: is.Controller2.saveState()}
}

// LoadState restores a previously captured PairState.
func (is *InputState) LoadState(s PairState) {
	is.Controller1.loadState(s.Controller1)
	is.Controller2.loadState(s.Controller2)
}
