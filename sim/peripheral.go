package sim

import "i2sframe/core"

// Peripheral is a simulated I2S peripheral on a Bus. It implements
// core.I2SPeripheral.
type Peripheral struct {
	bus     *Bus
	role    core.Role
	dir     core.Direction
	enabled bool
	started bool // slave only: shifting in step with its own counter
	q       int  // slave slot counter

	sr      core.Status
	dr      uint16
	ovrRead bool // data register read since OVR was raised

	txie, rxie, errie bool

	underruns   int
	overruns    int
	frameErrors int
	writes      int
	reads       int
}

// Role returns the clocking role
func (x *Peripheral) Role() core.Role { return x.role }

// Direction returns the data direction
func (x *Peripheral) Direction() core.Direction { return x.dir }

// IsEnabled reports whether the peripheral is enabled
func (x *Peripheral) IsEnabled() bool { return x.enabled }

// Underruns returns how many shifts found the transmit register empty
func (x *Peripheral) Underruns() int { return x.underruns }

// Overruns returns how many half-words were lost to a full receive register
func (x *Peripheral) Overruns() int { return x.overruns }

// FrameErrors returns how many slots disagreed with WS
func (x *Peripheral) FrameErrors() int { return x.frameErrors }

func (x *Peripheral) Status() core.Status {
	s := x.sr
	x.sr &^= core.StatusUDR | core.StatusFRE
	if x.sr.OVR() && x.ovrRead {
		x.sr &^= core.StatusOVR
		x.ovrRead = false
	}
	return s
}

func (x *Peripheral) ReadData() uint16 {
	x.reads++
	x.sr &^= core.StatusRXNE
	if x.sr.OVR() {
		x.ovrRead = true
	}
	return x.dr
}

func (x *Peripheral) WriteData(data uint16) {
	x.writes++
	x.dr = data
	x.sr &^= core.StatusTXE
}

func (x *Peripheral) Enable() {
	x.enabled = true
	x.started = false
	x.ovrRead = false
	x.sr &^= core.StatusRXNE | core.StatusUDR | core.StatusOVR | core.StatusFRE

	if x.role == core.RoleMaster {
		x.bus.startClock()
		if x.dir == core.DirTransmit {
			x.sr |= core.StatusTXE
		}
		x.setChannel(x.bus.channelAt(0))
		return
	}
	// a slave keeps a half-word written while disabled
	x.setChannel(core.ChannelLeft)
}

func (x *Peripheral) Disable() {
	x.enabled = false
	x.started = false
}

func (x *Peripheral) SetTxInterrupt(enabled bool)    { x.txie = enabled }
func (x *Peripheral) SetRxInterrupt(enabled bool)    { x.rxie = enabled }
func (x *Peripheral) SetErrorInterrupt(enabled bool) { x.errie = enabled }

// Pending reports whether the peripheral is requesting an interrupt
func (x *Peripheral) Pending() bool {
	if !x.enabled {
		return false
	}
	if x.txie && x.dir == core.DirTransmit && x.sr.TXE() {
		return true
	}
	if x.rxie && x.sr.RXNE() {
		return true
	}
	return x.errie && x.sr&(core.StatusUDR|core.StatusOVR|core.StatusFRE) != 0
}

func (x *Peripheral) setChannel(ch core.Channel) {
	if ch == core.ChannelRight {
		x.sr |= core.StatusCHSIDE
	} else {
		x.sr &^= core.StatusCHSIDE
	}
}

// shifting reports whether the peripheral takes part in the current slot
func (x *Peripheral) shifting() bool {
	if x.role == core.RoleMaster {
		return x.enabled
	}
	return x.started
}

// slot returns the slot number as seen by this peripheral
func (x *Peripheral) slot() int {
	if x.role == core.RoleMaster {
		return x.bus.p
	}
	return x.q
}

func (x *Peripheral) shiftOut(next core.Channel) uint16 {
	var v uint16
	if x.sr.TXE() {
		x.underruns++
		x.sr |= core.StatusUDR
	} else {
		v = x.dr
		x.sr |= core.StatusTXE
	}
	x.setChannel(next)
	return v
}

func (x *Peripheral) shiftIn(v uint16, ch core.Channel) {
	if x.sr.RXNE() {
		x.overruns++
		x.sr |= core.StatusOVR
		return
	}
	x.dr = v
	x.sr |= core.StatusRXNE
	x.setChannel(ch)
}
