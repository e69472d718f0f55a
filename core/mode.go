package core

// Role selects which side drives the bit clock and WS
type Role uint8

const (
	RoleMaster Role = iota
	RoleSlave
)

// Direction of sample flow relative to this device
type Direction uint8

const (
	DirTransmit Direction = iota
	DirReceive
)

// Width is the number of bits per channel sample
type Width uint8

const (
	Width16 Width = 16
	Width32 Width = 32
)

// HalfWords returns the number of 16-bit register transfers per channel
func (w Width) HalfWords() int {
	if w == Width32 {
		return 2
	}
	return 1
}

// Mode is one of the eight role x direction x width combinations a driver
// can be bound to. The zero value means "unbound".
type Mode uint8

const (
	modeNone Mode = iota
	ModeSlaveTransmit16
	ModeMasterTransmit16
	ModeSlaveReceive16
	ModeMasterReceive16
	ModeSlaveTransmit32
	ModeMasterTransmit32
	ModeSlaveReceive32
	ModeMasterReceive32
)

// NewMode composes a mode from its three axes
func NewMode(role Role, dir Direction, width Width) Mode {
	m := ModeSlaveTransmit16
	if width == Width32 {
		m = ModeSlaveTransmit32
	}
	if dir == DirReceive {
		m += 2
	}
	if role == RoleMaster {
		m++
	}
	return m
}

// Valid reports whether m is one of the eight bound modes
func (m Mode) Valid() bool {
	return m >= ModeSlaveTransmit16 && m <= ModeMasterReceive32
}

func (m Mode) index() uint8 {
	return uint8(m - ModeSlaveTransmit16)
}

// Role returns the clocking role of the mode
func (m Mode) Role() Role {
	if m.index()&1 == 1 {
		return RoleMaster
	}
	return RoleSlave
}

// Direction returns the data direction of the mode
func (m Mode) Direction() Direction {
	if m.index()&2 == 2 {
		return DirReceive
	}
	return DirTransmit
}

// Width returns the sample width of the mode
func (m Mode) Width() Width {
	if m.index()&4 == 4 {
		return Width32
	}
	return Width16
}

func (r Role) String() string {
	if r == RoleMaster {
		return "master"
	}
	return "slave"
}

func (d Direction) String() string {
	if d == DirReceive {
		return "receive"
	}
	return "transmit"
}

func (m Mode) String() string {
	if !m.Valid() {
		return "unbound"
	}
	return m.Role().String() + "-" + m.Direction().String() + "-" + utoa(uint32(m.Width()))
}
