package core

import (
	"strings"
	"testing"
)

// fakePeriph records every register access in order
type fakePeriph struct {
	status  []Status // returned in order, the last one repeats
	data    uint16
	ops     []string
	writes  []uint16
	enabled bool
	txie    bool
	rxie    bool
	errie   bool
}

func (f *fakePeriph) Status() Status {
	f.ops = append(f.ops, "status")
	s := f.status[0]
	if len(f.status) > 1 {
		f.status = f.status[1:]
	}
	return s
}

func (f *fakePeriph) ReadData() uint16 {
	f.ops = append(f.ops, "read")
	return f.data
}

func (f *fakePeriph) WriteData(data uint16) {
	f.ops = append(f.ops, "write")
	f.writes = append(f.writes, data)
}

func (f *fakePeriph) Enable() {
	f.ops = append(f.ops, "enable")
	f.enabled = true
}

func (f *fakePeriph) Disable() {
	f.ops = append(f.ops, "disable")
	f.enabled = false
}

func (f *fakePeriph) SetTxInterrupt(enabled bool)    { f.txie = enabled }
func (f *fakePeriph) SetRxInterrupt(enabled bool)    { f.rxie = enabled }
func (f *fakePeriph) SetErrorInterrupt(enabled bool) { f.errie = enabled }

type fakeEXTI struct {
	lines map[uint8]bool
}

func (e *fakeEXTI) SetLineMask(line uint8, enabled bool) {
	if e.lines == nil {
		e.lines = make(map[uint8]bool)
	}
	e.lines[line] = enabled
}

type fakePin struct {
	line    uint8
	high    bool
	cleared int
}

func (p *fakePin) EnableInterrupt(exti EdgeController)  { exti.SetLineMask(p.line, true) }
func (p *fakePin) DisableInterrupt(exti EdgeController) { exti.SetLineMask(p.line, false) }
func (p *fakePin) ClearInterruptPendingBit()            { p.cleared++ }
func (p *fakePin) IsHigh() bool                         { return p.high }

func opsString(ops []string) string {
	return strings.Join(ops, ",")
}

func boundDriver(t *testing.T, mode Mode, periph *fakePeriph, pin *fakePin) *Driver {
	t.Helper()
	d := NewDriver("test")
	b := Binding{Mode: mode, Periph: periph}
	if pin != nil {
		b.WS = pin
	}
	if err := d.Bind(b); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	return d
}

func TestTransmitUnderrunSequence(t *testing.T) {
	DrainLog(nil)
	periph := &fakePeriph{status: []Status{StatusTXE | StatusUDR, 0}}
	d := boundDriver(t, ModeMasterTransmit32, periph, nil)

	src := NewQueue[Sample32](DefaultQueueCapacity)
	p, c := src.Split()
	p.Enqueue(Sample32{Left: 0x11113333, Right: 0x55557777})

	d.TransmitInterrupt(&fakeEXTI{}, TxSources{S32: c})

	if got, want := opsString(periph.ops), "status,write,status,write"; got != want {
		t.Errorf("Expected register sequence %s, got %s", want, got)
	}
	if periph.writes[0] != 0x1111 || periph.writes[1] != 0 {
		t.Errorf("Expected writes [0x1111 0], got %04X", periph.writes)
	}
	if s := d.Stats(); s.Underruns != 1 || s.Frames != 1 {
		t.Errorf("Expected 1 underrun and 1 frame, got %+v", s)
	}
	var msgs []string
	DrainLog(func(e LogEvent) { msgs = append(msgs, e.Msg) })
	if len(msgs) != 1 || msgs[0] != "underrun" {
		t.Errorf("Expected one underrun log, got %v", msgs)
	}
}

func TestReceiveOverrunSequence(t *testing.T) {
	DrainLog(nil)
	periph := &fakePeriph{status: []Status{StatusRXNE | StatusOVR, 0}, data: 0x1234}
	d := boundDriver(t, ModeMasterReceive16, periph, nil)
	sink, _ := NewRxQueues(DefaultQueueCapacity)

	d.ReceiveInterrupt(&fakeEXTI{}, sink)

	if got, want := opsString(periph.ops), "status,read,read,status"; got != want {
		t.Errorf("Expected register sequence %s, got %s", want, got)
	}
	if d.Stats().Overruns != 1 {
		t.Errorf("Expected 1 overrun, got %d", d.Stats().Overruns)
	}
	if d.FrameState() != StateRightMsb {
		t.Errorf("Expected the data read to advance the frame, state %v", d.FrameState())
	}
	DrainLog(nil)
}

func TestReceiveReadsBeforeErrorCheck(t *testing.T) {
	periph := &fakePeriph{status: []Status{StatusRXNE | StatusFRE}}
	pin := &fakePin{line: 3}
	exti := &fakeEXTI{}
	d := boundDriver(t, ModeSlaveReceive32, periph, pin)
	d.Enable()
	periph.ops = nil
	sink, _ := NewRxQueues(DefaultQueueCapacity)

	d.ReceiveInterrupt(exti, sink)

	if got, want := opsString(periph.ops), "status,read,disable"; got != want {
		t.Errorf("Expected register sequence %s, got %s", want, got)
	}
	if !exti.lines[3] {
		t.Error("Expected WS edge interrupt to be armed")
	}
	if d.Resync() != ResyncArmed {
		t.Errorf("Expected resync state %v, got %v", ResyncArmed, d.Resync())
	}
	if d.FrameState() != StateLeftMsb {
		t.Errorf("Expected frame reset, state %v", d.FrameState())
	}
	if d.Enabled() {
		t.Error("Expected peripheral disabled after frame error")
	}
	if d.Stats().FrameErrors != 1 {
		t.Errorf("Expected 1 frame error, got %d", d.Stats().FrameErrors)
	}
	DrainLog(nil)
}

func TestMasterIgnoresFrameError(t *testing.T) {
	periph := &fakePeriph{status: []Status{StatusTXE | StatusFRE}}
	d := boundDriver(t, ModeMasterTransmit16, periph, nil)
	d.Enable()
	src, _ := NewTxQueues(DefaultQueueCapacity)

	d.TransmitInterrupt(&fakeEXTI{}, src)

	if !d.Enabled() || d.Stats().FrameErrors != 0 {
		t.Errorf("Master should not act on FRE, stats %+v", d.Stats())
	}
}

func TestEdgeInterruptResync(t *testing.T) {
	exti := &fakeEXTI{}
	periph := &fakePeriph{status: []Status{0}}
	pin := &fakePin{line: 12}
	d := boundDriver(t, ModeSlaveTransmit16, periph, pin)
	d.arm(exti)
	if !exti.lines[12] {
		t.Fatal("arm did not enable the edge line")
	}

	// shared line: an edge with WS low is somebody else's
	d.EdgeInterrupt(exti)
	if d.Resync() != ResyncArmed || d.Enabled() {
		t.Fatalf("Low edge should keep waiting, state %v", d.Resync())
	}

	pin.high = true
	periph.ops = nil
	d.EdgeInterrupt(exti)

	if got, want := opsString(periph.ops), "write,enable"; got != want {
		t.Errorf("Expected register sequence %s, got %s", want, got)
	}
	if periph.writes[0] != 0 {
		t.Errorf("Expected preloaded zero, got 0x%04X", periph.writes[0])
	}
	if exti.lines[12] {
		t.Error("Expected edge line masked after resync")
	}
	if pin.cleared != 2 {
		t.Errorf("Expected pending bit cleared twice, got %d", pin.cleared)
	}
	if d.Resync() != ResyncResynced || d.Stats().Resyncs != 1 {
		t.Errorf("Expected resynced, got %v (%d)", d.Resync(), d.Stats().Resyncs)
	}

	// not armed any more: only acknowledge
	periph.ops = nil
	d.EdgeInterrupt(exti)
	if len(periph.ops) != 0 || pin.cleared != 3 {
		t.Errorf("Unexpected access on stray edge: %v", periph.ops)
	}
}

func TestEdgeInterruptReceiveDoesNotWrite(t *testing.T) {
	exti := &fakeEXTI{}
	periph := &fakePeriph{status: []Status{0}}
	pin := &fakePin{line: 1, high: true}
	d := boundDriver(t, ModeSlaveReceive16, periph, pin)
	d.arm(exti)
	periph.ops = nil

	d.EdgeInterrupt(exti)

	if got := opsString(periph.ops); got != "enable" {
		t.Errorf("Expected only enable, got %s", got)
	}
}

func TestReceiveBackpressure(t *testing.T) {
	periph := &fakePeriph{status: []Status{StatusRXNE}, data: 0x0101}
	d := boundDriver(t, ModeMasterReceive16, periph, nil)
	d.Enable()

	p, c := NewQueue[Timed[Sample16]](2).Split()
	sink := RxSinks{S16: p}
	feed := func(ch Channel) {
		if ch == ChannelRight {
			periph.status = []Status{StatusRXNE | StatusCHSIDE}
		} else {
			periph.status = []Status{StatusRXNE}
		}
		d.ReceiveInterrupt(&fakeEXTI{}, sink)
	}

	feed(ChannelLeft)
	feed(ChannelRight)
	if !d.Enabled() {
		t.Fatal("Disabled with room left in the queue")
	}
	feed(ChannelLeft)
	feed(ChannelRight)
	if d.Enabled() {
		t.Fatal("Expected peripheral stopped once the queue filled")
	}
	if s := d.Stats(); s.Backpressure != 1 || s.Dropped != 0 || s.Frames != 2 {
		t.Errorf("Unexpected stats %+v", s)
	}

	// a late half-word after the stop: the push fails and nothing is
	// overwritten
	feed(ChannelLeft)
	feed(ChannelRight)
	if s := d.Stats(); s.Dropped != 1 {
		t.Errorf("Expected 1 dropped frame, got %+v", s)
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 queued frames, got %d", c.Len())
	}
	for i := 0; i < 2; i++ {
		v, _ := c.Dequeue()
		if v.Sample != (Sample16{Left: 0x0101, Right: 0x0101}) {
			t.Errorf("Frame %d corrupted: %+v", i, v.Sample)
		}
	}
}

func TestReceiveTimestamp(t *testing.T) {
	SetTime(0)
	SetClockSource(func() uint32 { return 4242 })
	defer SetClockSource(nil)

	periph := &fakePeriph{status: []Status{StatusRXNE}, data: 7}
	d := boundDriver(t, ModeMasterReceive16, periph, nil)
	sink, queues := NewRxQueues(DefaultQueueCapacity)

	d.ReceiveInterrupt(&fakeEXTI{}, sink)
	periph.status = []Status{StatusRXNE | StatusCHSIDE}
	d.ReceiveInterrupt(&fakeEXTI{}, sink)

	v, ok := queues.S16.Dequeue()
	if !ok {
		t.Fatal("No frame received")
	}
	if v.Time != 4242 || v.Sample != (Sample16{Left: 7, Right: 7}) {
		t.Errorf("Unexpected sample %+v", v)
	}
}

func TestChannelErrorLogging(t *testing.T) {
	DrainLog(nil)

	rxPeriph := &fakePeriph{status: []Status{StatusRXNE | StatusCHSIDE}}
	rx := boundDriver(t, ModeMasterReceive32, rxPeriph, nil)
	sink, _ := NewRxQueues(DefaultQueueCapacity)
	rx.ReceiveInterrupt(&fakeEXTI{}, sink)

	txPeriph := &fakePeriph{status: []Status{StatusTXE | StatusCHSIDE}}
	tx := boundDriver(t, ModeMasterTransmit32, txPeriph, nil)
	src, _ := NewTxQueues(DefaultQueueCapacity)
	tx.TransmitInterrupt(&fakeEXTI{}, src)

	if txPeriph.writes[0] != 0 {
		t.Errorf("Expected zero on transmit mismatch, got 0x%04X", txPeriph.writes[0])
	}
	if rx.Stats().ChannelErrors != 1 || tx.Stats().ChannelErrors != 1 {
		t.Errorf("Expected one channel error each, got %d/%d",
			rx.Stats().ChannelErrors, tx.Stats().ChannelErrors)
	}

	var msgs []string
	DrainLog(func(e LogEvent) { msgs = append(msgs, e.Msg) })
	if len(msgs) != 1 || msgs[0] != "channel error" {
		t.Errorf("Expected only the receive side to log, got %v", msgs)
	}
}

func TestWrongHandlerPanics(t *testing.T) {
	testCases := []struct {
		name string
		mode Mode
		call func(d *Driver)
	}{
		{"transmit on receive binding", ModeMasterReceive16, func(d *Driver) {
			d.TransmitInterrupt(&fakeEXTI{}, TxSources{})
		}},
		{"receive on transmit binding", ModeMasterTransmit32, func(d *Driver) {
			d.ReceiveInterrupt(&fakeEXTI{}, RxSinks{})
		}},
		{"unbound", modeNone, func(d *Driver) {
			d.ReceiveInterrupt(&fakeEXTI{}, RxSinks{})
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDriver("test")
			if tc.mode.Valid() {
				d.Bind(Binding{Mode: tc.mode, Periph: &fakePeriph{status: []Status{0}}})
			}
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			tc.call(d)
		})
	}
}

func TestBindAndTake(t *testing.T) {
	periph := &fakePeriph{status: []Status{0}}
	d := NewDriver("test")

	exti := &fakeEXTI{}
	if _, err := d.Take(exti); err != ErrNotBound {
		t.Errorf("Expected ErrNotBound, got %v", err)
	}
	if err := d.Bind(Binding{Mode: ModeMasterTransmit32, Periph: periph}); err != nil {
		t.Fatal(err)
	}
	if err := d.Bind(Binding{Mode: ModeMasterReceive32, Periph: periph}); err != ErrBindingActive {
		t.Errorf("Expected ErrBindingActive, got %v", err)
	}

	d.Enable()
	d.asm.State = StateRightLsb
	b := d.MustTake(ModeMasterTransmit32, exti)
	if b.Mode != ModeMasterTransmit32 || b.Periph != periph {
		t.Errorf("Unexpected binding returned: %+v", b)
	}
	if periph.enabled || d.Bound() || d.FrameState() != StateLeftMsb {
		t.Error("Take should disable, unbind and reset the frame")
	}

	if err := d.Bind(Binding{Mode: ModeMasterReceive32, Periph: periph}); err != nil {
		t.Errorf("Rebind after take failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected MustTake with the wrong mode to panic")
		}
	}()
	d.MustTake(ModeSlaveReceive32, exti)
}

func TestTakeMasksArmedWSLine(t *testing.T) {
	DrainLog(nil)
	periph := &fakePeriph{status: []Status{StatusFRE}}
	pin := &fakePin{line: 12}
	exti := &fakeEXTI{}
	d := boundDriver(t, ModeSlaveReceive32, periph, pin)

	d.ReceiveInterrupt(exti, RxSinks{})
	if d.Resync() != ResyncArmed || !exti.lines[12] {
		t.Fatalf("Expected armed with line 12 unmasked, resync %s", d.Resync())
	}
	b, err := d.Take(exti)
	if err != nil {
		t.Fatal(err)
	}
	if b.WS != pin || exti.lines[12] {
		t.Error("Take should mask the WS line of an armed driver")
	}
	if d.Bound() || d.Resync() != ResyncIdle {
		t.Errorf("Expected unbound and idle, resync %s", d.Resync())
	}
	DrainLog(nil)
}

func TestBindResetsStats(t *testing.T) {
	periph := &fakePeriph{status: []Status{StatusTXE}}
	d := boundDriver(t, ModeMasterTransmit16, periph, nil)
	d.TransmitInterrupt(&fakeEXTI{}, TxSources{})
	if d.Stats().Interrupts != 1 {
		t.Fatalf("Expected 1 interrupt, got %+v", d.Stats())
	}
	d.MustTake(ModeMasterTransmit16, &fakeEXTI{})
	if err := d.Bind(Binding{Mode: ModeMasterTransmit16, Periph: periph}); err != nil {
		t.Fatal(err)
	}
	if d.Stats() != (Stats{}) {
		t.Errorf("Expected zero stats after rebind, got %+v", d.Stats())
	}
}

func TestSlaveBindRequiresPin(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for slave binding without WS pin")
		}
	}()
	NewDriver("test").Bind(Binding{Mode: ModeSlaveReceive16, Periph: &fakePeriph{}})
}
