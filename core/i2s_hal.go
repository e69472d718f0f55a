package core

// Channel is the stereo side a half-word belongs to
type Channel uint8

const (
	ChannelLeft Channel = iota
	ChannelRight
)

func (c Channel) String() string {
	if c == ChannelRight {
		return "right"
	}
	return "left"
}

// Status is a snapshot of the peripheral status register.
// Bit positions follow the STM32 SPI_SR layout.
type Status uint16

const (
	StatusRXNE   Status = 1 << 0 // receive buffer not empty
	StatusTXE    Status = 1 << 1 // transmit buffer empty
	StatusCHSIDE Status = 1 << 2 // channel side: 0 = left, 1 = right
	StatusUDR    Status = 1 << 3 // underrun
	StatusOVR    Status = 1 << 6 // overrun
	StatusFRE    Status = 1 << 8 // frame format error
)

func (s Status) RXNE() bool { return s&StatusRXNE != 0 }
func (s Status) TXE() bool  { return s&StatusTXE != 0 }
func (s Status) UDR() bool  { return s&StatusUDR != 0 }
func (s Status) OVR() bool  { return s&StatusOVR != 0 }
func (s Status) FRE() bool  { return s&StatusFRE != 0 }

// Channel returns the side of the half-word the flags refer to
func (s Status) Channel() Channel {
	if s&StatusCHSIDE != 0 {
		return ChannelRight
	}
	return ChannelLeft
}

// I2SPeripheral is the register-level interface of one serial audio
// peripheral instance. Implementations must not add buffering: every
// method maps to a single register access.
type I2SPeripheral interface {
	// Status reads the status register. Reading it is part of the
	// UDR/FRE/OVR clear sequences.
	Status() Status

	// ReadData reads the 16-bit data register, clearing RXNE
	ReadData() uint16

	// WriteData writes the 16-bit data register, clearing TXE
	WriteData(data uint16)

	// Enable starts the peripheral (and the clock when master)
	Enable()

	// Disable stops the peripheral
	Disable()

	// SetTxInterrupt enables or disables the TXE interrupt
	SetTxInterrupt(enabled bool)

	// SetRxInterrupt enables or disables the RXNE interrupt
	SetRxInterrupt(enabled bool)

	// SetErrorInterrupt enables or disables the UDR/OVR/FRE interrupt
	SetErrorInterrupt(enabled bool)
}

// EdgeController is the shared external interrupt controller the WS pins
// are routed through. It is shared by all peripherals and must be
// accessed under a Resource lock.
type EdgeController interface {
	SetLineMask(line uint8, enabled bool)
}

// WSPin is the word select line sampled by a slave for resynchronization
type WSPin interface {
	// EnableInterrupt unmasks the pin's edge line
	EnableInterrupt(exti EdgeController)

	// DisableInterrupt masks the pin's edge line
	DisableInterrupt(exti EdgeController)

	// ClearInterruptPendingBit acknowledges a pending edge
	ClearInterruptPendingBit()

	// IsHigh returns the current level of the pin
	IsHigh() bool
}
