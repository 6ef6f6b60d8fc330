// Package input implements the NES joypad shift-register protocol.
package input

// Button is a single NES controller button, usable as a bitmask.
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

// Buttons is the joypad input record: one boolean per button, in the order
// the hardware shifts them out (A, B, Select, Start, Up, Down, Left, Right).
type Buttons struct {
	A, B, Select, Start, Up, Down, Left, Right bool
}

func (b Buttons) pack() uint8 {
	var v uint8
	if b.A {
		v |= uint8(ButtonA)
	}
	if b.B {
		v |= uint8(ButtonB)
	}
	if b.Select {
		v |= uint8(ButtonSelect)
	}
	if b.Start {
		v |= uint8(ButtonStart)
	}
	if b.Up {
		v |= uint8(ButtonUp)
	}
	if b.Down {
		v |= uint8(ButtonDown)
	}
	if b.Left {
		v |= uint8(ButtonLeft)
	}
	if b.Right {
		v |= uint8(ButtonRight)
	}
	return v
}

// Controller models one NES controller's strobe latch and 8-bit shift
// register.
type Controller struct {
	buttons       uint8
	shiftRegister uint8
	strobe        bool
	readIndex     uint8
}

func New() *Controller {
	return &Controller{}
}

// SetButtons latches the controller's current button state. It does not
// affect an in-progress read sequence; while the strobe is high it also
// reloads the shift register from this state.
func (c *Controller) SetButtons(b Buttons) {
	c.buttons = b.pack()
	if c.strobe {
		c.shiftRegister = c.buttons
	}
}

// Write handles a write to $4016. Bit 0 is the strobe: while it is set, the
// shift register continuously reloads from the current button state, and
// each write with bit 0 set also resets the read index. A write with bit 0
// clear only lowers the strobe, leaving the loaded state for the reads.
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		c.shiftRegister = c.buttons
		c.readIndex = 0
	}
}

// Read handles a read of $4016/$4017: bit 0 carries the button at the
// current read index (A, B, Select, Start, Up, Down, Left, Right), and the
// index advances modulo 8 on every read, so reads 9-16 repeat reads 1-8.
// While strobed, the register keeps reloading so every read returns the A
// button.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.shiftRegister = c.buttons
		return c.shiftRegister & 1
	}

	bit := (c.shiftRegister >> c.readIndex) & 1
	c.readIndex = (c.readIndex + 1) % 8
	return bit
}

func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.readIndex = 0
}

// InputState holds both controller ports and dispatches $4016/$4017 traffic.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

func (is *InputState) SetButtons1(b Buttons) { is.Controller1.SetButtons(b) }
func (is *InputState) SetButtons2(b Buttons) { is.Controller2.SetButtons(b) }

// Read dispatches a CPU-bus read of $4016 or $4017. Bit 6 is always set on
// $4017 per real hardware's open-bus behavior on that port.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write dispatches a CPU-bus write of $4016; both controllers' shift
// registers observe the same strobe line.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
