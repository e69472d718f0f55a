package sim

// maxPasses bounds how often Service sweeps the sources after one tick
const maxPasses = 8

type source struct {
	key     any
	pending func() bool
	handle  func()
}

// Dispatcher clocks buses and calls interrupt handlers for pending sources
type Dispatcher struct {
	buses   []*Bus
	sources []source
	masked  map[any]bool
	now     uint64

	// AfterTick, when set, runs after every tick once interrupts have
	// been serviced. Tests use it to feed and drain queues.
	AfterTick func(now uint64)
}

// NewDispatcher creates a dispatcher clocking the given buses together
func NewDispatcher(buses ...*Bus) *Dispatcher {
	return &Dispatcher{buses: buses, masked: make(map[any]bool)}
}

// OnPeripheral registers the data interrupt handler of x
func (d *Dispatcher) OnPeripheral(x *Peripheral, handler func()) {
	d.sources = append(d.sources, source{key: x, pending: x.Pending, handle: handler})
}

// OnPin registers the edge interrupt handler of pin
func (d *Dispatcher) OnPin(pin *Pin, handler func()) {
	d.sources = append(d.sources, source{key: pin, pending: pin.Pending, handle: handler})
}

// Mask stops (or resumes) servicing the given peripheral or pin, to model
// an interrupt held off by a higher priority one
func (d *Dispatcher) Mask(key any, masked bool) {
	if masked {
		d.masked[key] = true
	} else {
		delete(d.masked, key)
	}
}

// Now returns the number of ticks run
func (d *Dispatcher) Now() uint64 {
	return d.now
}

// Clock returns a timestamp source that reads the tick count, suitable for
// core.SetClockSource
func (d *Dispatcher) Clock() func() uint32 {
	return func() uint32 { return uint32(d.now) }
}

// Service calls handlers until no unmasked source is pending and returns
// the number of handler calls
func (d *Dispatcher) Service() int {
	n := 0
	for pass := 0; pass < maxPasses; pass++ {
		fired := false
		for _, s := range d.sources {
			if d.masked[s.key] || !s.pending() {
				continue
			}
			s.handle()
			fired = true
			n++
		}
		if !fired {
			break
		}
	}
	return n
}

// Step clocks every bus by one slot and services interrupts
func (d *Dispatcher) Step() {
	for _, b := range d.buses {
		b.Tick()
	}
	d.now++
	d.Service()
	if d.AfterTick != nil {
		d.AfterTick(d.now)
	}
}

// Run services anything already pending, then runs n steps
func (d *Dispatcher) Run(n int) {
	d.Service()
	for i := 0; i < n; i++ {
		d.Step()
	}
}

// RunUntil steps until cond holds or limit steps have run, and reports
// whether cond was met
func (d *Dispatcher) RunUntil(cond func() bool, limit int) bool {
	d.Service()
	for i := 0; i < limit; i++ {
		if cond() {
			return true
		}
		d.Step()
	}
	return cond()
}
