package core

// Port ties one peripheral instance to its driver binding, the shared edge
// controller and the interrupt-side queue endpoints. Its Handle methods are
// the entry points for the interrupt dispatcher. Every entry point takes
// the edge controller lock before the driver lock.
type Port struct {
	name string
	dir  Direction
	exti *Resource[EdgeController]
	drv  *Resource[*Driver]
	tx   TxSources
	rx   RxSinks
}

// NewTransmitPort creates a port whose bindings pull samples from src
func NewTransmitPort(name string, exti *Resource[EdgeController], src TxSources) *Port {
	return &Port{
		name: name,
		dir:  DirTransmit,
		exti: exti,
		drv:  NewResource(NewDriver(name)),
		tx:   src,
	}
}

// NewReceivePort creates a port whose bindings push samples into sink
func NewReceivePort(name string, exti *Resource[EdgeController], sink RxSinks) *Port {
	return &Port{
		name: name,
		dir:  DirReceive,
		exti: exti,
		drv:  NewResource(NewDriver(name)),
		rx:   sink,
	}
}

// Name returns the port's log tag
func (p *Port) Name() string {
	return p.name
}

// Direction returns the direction every binding of this port must have
func (p *Port) Direction() Direction {
	return p.dir
}

// HandleDataInterrupt is the peripheral interrupt entry point
func (p *Port) HandleDataInterrupt() {
	g := lockPair(&p.exti.mu, &p.drv.mu)
	defer g.unlock()

	d := p.drv.value
	if p.dir == DirTransmit {
		d.TransmitInterrupt(p.exti.value, p.tx)
	} else {
		d.ReceiveInterrupt(p.exti.value, p.rx)
	}
}

// HandleEdgeInterrupt is the WS pin edge interrupt entry point
func (p *Port) HandleEdgeInterrupt() {
	g := lockPair(&p.exti.mu, &p.drv.mu)
	defer g.unlock()

	p.drv.value.EdgeInterrupt(p.exti.value)
}

// Start binds b and starts it: interrupts are enabled, a master starts
// clocking immediately and a slave waits for the next WS rising edge.
func (p *Port) Start(b Binding) error {
	if b.Mode.Direction() != p.dir {
		panic("core: " + p.name + " is a " + p.dir.String() + " port, cannot start " + b.Mode.String())
	}

	g := lockPair(&p.exti.mu, &p.drv.mu)
	defer g.unlock()

	d := p.drv.value
	if err := d.Bind(b); err != nil {
		return err
	}
	if p.dir == DirTransmit {
		b.Periph.SetTxInterrupt(true)
	} else {
		b.Periph.SetRxInterrupt(true)
	}
	b.Periph.SetErrorInterrupt(true)

	if b.Mode.Role() == RoleMaster {
		d.enable()
	} else {
		d.arm(p.exti.value)
	}
	return nil
}

// Stop disables the binding and returns it. It panics if the port is not
// bound to mode.
func (p *Port) Stop(mode Mode) Binding {
	g := lockPair(&p.exti.mu, &p.drv.mu)
	defer g.unlock()

	b := p.drv.value.MustTake(mode, p.exti.value)
	b.Periph.SetTxInterrupt(false)
	b.Periph.SetRxInterrupt(false)
	b.Periph.SetErrorInterrupt(false)
	return b
}

// Resume restarts a binding stopped by backpressure. A master restarts at
// a frame boundary of its own; a slave waits for the next WS edge.
// Resuming a receive port whose queue has no room returns ErrQueueFull.
func (p *Port) Resume() error {
	g := lockPair(&p.exti.mu, &p.drv.mu)
	defer g.unlock()

	d := p.drv.value
	if !d.Bound() {
		return ErrNotBound
	}
	if p.dir == DirReceive && !p.rx.ready(d.Mode().Width()) {
		return ErrQueueFull
	}
	if d.Mode().Role() == RoleMaster {
		d.disable()
		d.asm.Reset()
		d.enable()
	} else {
		d.arm(p.exti.value)
	}
	return nil
}

// Stats returns the driver counters
func (p *Port) Stats() Stats {
	var s Stats
	p.drv.Lock(func(d *Driver) { s = d.Stats() })
	return s
}

// Enabled reports whether the bound peripheral is running
func (p *Port) Enabled() bool {
	var on bool
	p.drv.Lock(func(d *Driver) { on = d.Enabled() })
	return on
}
