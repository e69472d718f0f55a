package core

// Binding is what a driver is attached to: a mode, the peripheral and, for
// slave modes, the WS pin used for resynchronization
type Binding struct {
	Mode   Mode
	Periph I2SPeripheral
	WS     WSPin
}

// Driver adapts one peripheral to the frame assembler for the bound mode.
// All methods assume the caller holds the driver's Resource lock; Port
// takes care of that for interrupt entry points.
type Driver struct {
	name    string
	b       Binding
	asm     Assembler
	feed    txFeed
	resync  ResyncState
	enabled bool
	stats   Stats
}

// txFeed pulls transmit frames from the session queue for the assembler
type txFeed struct {
	width Width
	src   TxSources
	stats *Stats
}

func (f *txFeed) NextFrame() Frame {
	f.stats.Frames++
	var (
		frame Frame
		ok    bool
	)
	switch f.width {
	case Width16:
		if f.src.S16 != nil {
			var s Sample16
			s, ok = f.src.S16.Dequeue()
			frame = Frame16(s)
		}
	case Width32:
		if f.src.S32 != nil {
			var s Sample32
			s, ok = f.src.S32.Dequeue()
			frame = Frame32(s)
		}
	}
	if !ok {
		f.stats.Starved++
	}
	return frame
}

// NewDriver creates an unbound driver. name tags its log events.
func NewDriver(name string) *Driver {
	d := &Driver{name: name}
	d.feed.stats = &d.stats
	return d
}

// Name returns the log tag of the driver
func (d *Driver) Name() string {
	return d.name
}

// Bind attaches the driver to a peripheral in the given mode. The frame
// state starts at StateLeftMsb and the counters at zero. A bound driver
// must be taken first.
func (d *Driver) Bind(b Binding) error {
	if d.b.Mode.Valid() {
		return ErrBindingActive
	}
	if !b.Mode.Valid() {
		panic("core: bind with invalid mode")
	}
	if b.Periph == nil {
		panic("core: bind without peripheral")
	}
	if b.Mode.Role() == RoleSlave && b.WS == nil {
		panic("core: slave binding requires a WS pin")
	}
	d.b = b
	d.asm = NewAssembler(b.Mode.Width())
	d.feed.width = b.Mode.Width()
	d.resync = ResyncIdle
	d.enabled = false
	d.stats = Stats{}
	return nil
}

// Bound reports whether the driver holds a binding
func (d *Driver) Bound() bool {
	return d.b.Mode.Valid()
}

// Mode returns the bound mode, or the zero Mode when unbound
func (d *Driver) Mode() Mode {
	return d.b.Mode
}

// Take disables the peripheral, masks the WS edge line on exti, resets the
// frame and releases the binding
func (d *Driver) Take(exti EdgeController) (Binding, error) {
	if !d.b.Mode.Valid() {
		return Binding{}, ErrNotBound
	}
	d.disable()
	if d.b.WS != nil {
		d.b.WS.DisableInterrupt(exti)
	}
	d.asm.Reset()
	b := d.b
	d.b = Binding{}
	d.resync = ResyncIdle
	return b, nil
}

// MustTake is Take for callers that know which mode is bound. It panics
// when the driver is unbound or bound to a different mode.
func (d *Driver) MustTake(mode Mode, exti EdgeController) Binding {
	if d.b.Mode != mode {
		panic("core: " + d.name + " take " + mode.String() + " but bound " + d.b.Mode.String())
	}
	b, _ := d.Take(exti)
	return b
}

// Enable starts the peripheral
func (d *Driver) Enable() {
	if d.b.Mode.Valid() {
		d.enable()
	}
}

// Disable stops the peripheral
func (d *Driver) Disable() {
	if d.b.Mode.Valid() {
		d.disable()
	}
}

func (d *Driver) enable() {
	d.b.Periph.Enable()
	d.enabled = true
}

func (d *Driver) disable() {
	d.b.Periph.Disable()
	d.enabled = false
}

// Enabled reports whether the driver last enabled its peripheral
func (d *Driver) Enabled() bool {
	return d.enabled
}

// ResetFrame returns the assembler to the start of a frame
func (d *Driver) ResetFrame() {
	d.asm.Reset()
}

// FrameState returns the assembler position
func (d *Driver) FrameState() FrameState {
	return d.asm.State
}

// Resync returns the slave resynchronization state
func (d *Driver) Resync() ResyncState {
	return d.resync
}

// Stats returns a copy of the event counters
func (d *Driver) Stats() Stats {
	return d.stats
}

func (d *Driver) expect(dir Direction) {
	if !d.b.Mode.Valid() {
		panic("core: " + d.name + " " + dir.String() + " interrupt on unbound driver")
	}
	if d.b.Mode.Direction() != dir {
		panic("core: " + d.name + " " + dir.String() + " handler called for " + d.b.Mode.String())
	}
}

// TransmitInterrupt services one transmit interrupt: at most one data
// register write, then error handling. The write happens before any error
// flag is looked at, since the next shift is imminent.
func (d *Driver) TransmitInterrupt(exti EdgeController, src TxSources) {
	d.expect(DirTransmit)
	d.stats.Interrupts++
	p := d.b.Periph
	st := p.Status()

	if st.TXE() {
		d.feed.src = src
		data, err := d.asm.Transmit(st.Channel(), &d.feed)
		p.WriteData(data)
		if err != nil {
			d.stats.ChannelErrors++
		}
	}

	if d.b.Mode.Role() == RoleSlave && st.FRE() {
		PostLog(d.name, ErrFrameError.Error())
		d.stats.FrameErrors++
		d.arm(exti)
	}

	if st.UDR() {
		PostLog(d.name, ErrUnderrun.Error())
		d.stats.Underruns++
		// clear sequence: status read, then data write
		p.Status()
		p.WriteData(0)
	}
}

// ReceiveInterrupt services one receive interrupt: at most one data
// register read, then error handling. A completed frame is pushed with its
// timestamp; if the queue rejects it or is left full, the peripheral is
// stopped until the session resumes it.
func (d *Driver) ReceiveInterrupt(exti EdgeController, sink RxSinks) {
	d.expect(DirReceive)
	d.stats.Interrupts++
	p := d.b.Periph
	st := p.Status()

	if st.RXNE() {
		data := p.ReadData()
		f, complete, err := d.asm.Receive(st.Channel(), data)
		if err != nil {
			PostLog(d.name, ErrInvalidTransition.Error())
			d.stats.ChannelErrors++
		} else if complete {
			d.stats.Frames++
			d.push(f, sink)
		}
	}

	if d.b.Mode.Role() == RoleSlave && st.FRE() {
		PostLog(d.name, ErrFrameError.Error())
		d.stats.FrameErrors++
		d.arm(exti)
	}

	if st.OVR() {
		PostLog(d.name, ErrOverrun.Error())
		d.stats.Overruns++
		// clear sequence: data read, then status read
		p.ReadData()
		p.Status()
	}
}

func (d *Driver) push(f Frame, sink RxSinks) {
	now := GetTime()
	var ok, ready bool
	switch d.b.Mode.Width() {
	case Width16:
		if sink.S16 == nil {
			panic("core: " + d.name + " has no 16-bit receive queue")
		}
		ok = sink.S16.Enqueue(Timed[Sample16]{Time: now, Sample: f.Sample16()})
		ready = sink.S16.Ready()
	case Width32:
		if sink.S32 == nil {
			panic("core: " + d.name + " has no 32-bit receive queue")
		}
		ok = sink.S32.Enqueue(Timed[Sample32]{Time: now, Sample: f.Sample32()})
		ready = sink.S32.Ready()
	}
	if !ok {
		d.stats.Dropped++
	}
	if !ok || !ready {
		d.disable()
		d.stats.Backpressure++
	}
}
