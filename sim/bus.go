package sim

import "i2sframe/core"

// Bus is one simulated I2S link. See the package documentation for the
// slot layout.
type Bus struct {
	width   core.Width
	half    int // slots per channel
	exti    *EXTI
	master  *Peripheral
	periphs []*Peripheral
	pins    []*Pin

	p     int    // master slot counter
	ws    bool   // WS level of the current slot
	line  uint16 // data on the line in the current slot
	slots uint64
}

// NewBus creates a link of the given sample width. Pins created on it
// raise their edges through exti.
func NewBus(width core.Width, exti *EXTI) *Bus {
	return &Bus{width: width, half: width.HalfWords(), exti: exti}
}

// NewPeripheral attaches a peripheral. A bus has at most one master.
func (b *Bus) NewPeripheral(role core.Role, dir core.Direction) *Peripheral {
	if role == core.RoleMaster {
		if b.master != nil {
			panic("sim: bus already has a master")
		}
	}
	x := &Peripheral{bus: b, role: role, dir: dir}
	if dir == core.DirTransmit {
		x.sr = core.StatusTXE
	}
	if role == core.RoleMaster {
		b.master = x
	}
	b.periphs = append(b.periphs, x)
	return x
}

// NewPin attaches a WS input routed to EXTI line
func (b *Bus) NewPin(line uint8) *Pin {
	pin := &Pin{bus: b, line: line}
	b.pins = append(b.pins, pin)
	return pin
}

// Width returns the sample width of the link
func (b *Bus) Width() core.Width {
	return b.width
}

// Running reports whether the master is clocking the link
func (b *Bus) Running() bool {
	return b.master != nil && b.master.enabled
}

// WS returns the current word select level
func (b *Bus) WS() bool {
	return b.ws
}

// Slots returns the number of slots clocked since the bus was created
func (b *Bus) Slots() uint64 {
	return b.slots
}

// Slip advances the master by n slots without clocking them, so running
// slaves fall out of step with WS
func (b *Bus) Slip(n int) {
	b.p += n
}

func (b *Bus) channelAt(slot int) core.Channel {
	if ((slot+b.half)/b.half)%2 == 1 {
		return core.ChannelRight
	}
	return core.ChannelLeft
}

func (b *Bus) startClock() {
	b.p = 0
	b.ws = false
}

// Tick clocks one slot. It returns false when the clock is stopped.
func (b *Bus) Tick() bool {
	if !b.Running() {
		return false
	}

	ch := b.channelAt(b.p)
	ws := ch == core.ChannelRight
	if ws && !b.ws {
		for _, pin := range b.pins {
			pin.raise()
		}
	}
	b.ws = ws

	for _, x := range b.periphs {
		if x.role == core.RoleSlave && x.enabled && !x.started && ch == core.ChannelLeft && b.p%b.half == 0 {
			x.started = true
			x.q = b.p
		}
	}

	b.line = 0
	for _, x := range b.periphs {
		if x.dir == core.DirTransmit && x.shifting() {
			b.line = x.shiftOut(b.channelAt(x.slot() + 1))
		}
	}

	for _, x := range b.periphs {
		if x.role == core.RoleSlave && x.started && b.channelAt(x.q) != ch {
			x.frameErrors++
			x.sr |= core.StatusFRE
		}
		if x.dir == core.DirReceive && x.shifting() {
			x.shiftIn(b.line, b.channelAt(x.slot()))
		}
	}

	b.p++
	for _, x := range b.periphs {
		if x.started {
			x.q++
		}
	}
	b.slots++
	return true
}
