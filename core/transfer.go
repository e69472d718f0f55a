package core

import (
	"context"
	"runtime"
)

// Transfer drives a peripheral by polling instead of interrupts, using the
// same frame assembler. Write and Read never block and return
// ErrWouldBlock until they can make progress; WriteAll, Flush and ReadN
// loop over them.
//
// A slave transfer recovers from frame errors the way the interrupt
// driver does, except that the WS line is sampled on every call instead
// of raising an edge interrupt.
type Transfer struct {
	b      Binding
	asm    Assembler
	stats  Stats
	resync ResyncState
	wsLow  bool // WS seen low since arming
}

// NewTransfer creates a polled transfer for b. The peripheral interrupts
// are left untouched; callers normally keep them disabled. Slave bindings
// need a WS pin.
func NewTransfer(b Binding) *Transfer {
	if !b.Mode.Valid() {
		panic("core: transfer with invalid mode")
	}
	if b.Mode.Role() == RoleSlave && b.WS == nil {
		panic("core: slave transfer without WS pin")
	}
	return &Transfer{b: b, asm: NewAssembler(b.Mode.Width())}
}

// Mode returns the transfer's mode
func (t *Transfer) Mode() Mode { return t.b.Mode }

// Stats returns the event counters
func (t *Transfer) Stats() Stats { return t.stats }

// Resync returns the slave resynchronization state
func (t *Transfer) Resync() ResyncState { return t.resync }

// Enable resets the frame and starts the peripheral. A slave waits for
// the next WS rising edge before it is enabled.
func (t *Transfer) Enable() {
	if t.b.Mode.Role() == RoleSlave {
		t.arm()
		return
	}
	t.asm.Reset()
	t.b.Periph.Enable()
}

// Disable stops the peripheral
func (t *Transfer) Disable() {
	t.b.Periph.Disable()
	t.resync = ResyncIdle
}

func (t *Transfer) arm() {
	t.b.Periph.Disable()
	t.asm.Reset()
	t.wsLow = !t.b.WS.IsHigh()
	t.resync = ResyncArmed
}

// waiting samples WS while armed and re-enables the peripheral on a
// rising edge. It reports whether the transfer is still waiting.
func (t *Transfer) waiting() bool {
	if t.resync != ResyncArmed {
		return false
	}
	if !t.b.WS.IsHigh() {
		t.wsLow = true
		return true
	}
	if !t.wsLow {
		return true
	}
	if t.b.Mode.Direction() == DirTransmit {
		t.b.Periph.WriteData(0)
	}
	t.b.Periph.Enable()
	t.resync = ResyncResynced
	t.stats.Resyncs++
	return true
}

// Write offers f for transmission. It emits at most one half-word and
// returns nil once f has been taken as the frame in flight; the remaining
// half-words of f go out on the following calls.
func (t *Transfer) Write(f Frame) error {
	if t.b.Mode.Direction() != DirTransmit {
		panic("core: write on " + t.b.Mode.String() + " transfer")
	}
	taken := false
	err := t.step(FrameSourceFunc(func() Frame {
		taken = true
		return f
	}))
	if err != nil {
		return err
	}
	if !taken {
		return ErrWouldBlock
	}
	t.stats.Frames++
	return nil
}

func (t *Transfer) step(src FrameSource) error {
	if t.waiting() {
		return ErrWouldBlock
	}
	p := t.b.Periph
	st := p.Status()

	var err error
	if st.TXE() {
		var data uint16
		data, err = t.asm.Transmit(st.Channel(), src)
		p.WriteData(data)
		if err != nil {
			t.stats.ChannelErrors++
			err = ErrWouldBlock
		}
	}

	if t.b.Mode.Role() == RoleSlave && st.FRE() {
		t.stats.FrameErrors++
		t.arm()
		return ErrFrameError
	}
	if st.UDR() {
		// the status read above plus the data write clear it
		t.stats.Underruns++
	}
	if !st.TXE() {
		return ErrWouldBlock
	}
	return err
}

// WriteAll writes every frame, polling until each is taken. A frame cut
// short by a frame error is written again after the resync.
func (t *Transfer) WriteAll(ctx context.Context, frames []Frame) error {
	for _, f := range frames {
		for {
			err := t.Write(f)
			if err == nil {
				break
			}
			if err != ErrWouldBlock && err != ErrFrameError {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}
	return nil
}

// Flush emits the rest of the frame in flight
func (t *Transfer) Flush(ctx context.Context) error {
	for t.asm.State != StateLeftMsb {
		err := t.step(nil)
		if err != nil && err != ErrWouldBlock && err != ErrFrameError {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err == ErrWouldBlock {
			runtime.Gosched()
		}
	}
	return nil
}

// Read consumes at most one half-word and returns a frame when it
// completes one. The data register is read before the error flags are
// looked at. ErrFrameError, ErrInvalidTransition and ErrOverrun report
// recovered errors; the frame restarts on the next left half-word.
func (t *Transfer) Read() (Frame, error) {
	if t.b.Mode.Direction() != DirReceive {
		panic("core: read on " + t.b.Mode.String() + " transfer")
	}
	if t.waiting() {
		return Frame{}, ErrWouldBlock
	}
	p := t.b.Periph
	st := p.Status()

	var (
		f        Frame
		complete bool
		err      error
	)
	if st.RXNE() {
		f, complete, err = t.asm.Receive(st.Channel(), p.ReadData())
	}

	if t.b.Mode.Role() == RoleSlave && st.FRE() {
		t.stats.FrameErrors++
		t.arm()
		return Frame{}, ErrFrameError
	}
	if st.OVR() {
		t.stats.Overruns++
		// clear sequence: data read, then status read
		p.ReadData()
		p.Status()
		t.asm.Reset()
		return Frame{}, ErrOverrun
	}

	if !st.RXNE() {
		return Frame{}, ErrWouldBlock
	}
	if err != nil {
		t.stats.ChannelErrors++
		return Frame{}, err
	}
	if !complete {
		return Frame{}, ErrWouldBlock
	}
	t.stats.Frames++
	return f, nil
}

// ReadN polls until n frames are received. Recovered errors are skipped.
func (t *Transfer) ReadN(ctx context.Context, n int) ([]Frame, error) {
	out := make([]Frame, 0, n)
	for len(out) < n {
		f, err := t.Read()
		switch err {
		case nil:
			out = append(out, f)
			continue
		case ErrWouldBlock, ErrInvalidTransition, ErrOverrun, ErrFrameError:
		default:
			return out, err
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		runtime.Gosched()
	}
	return out, nil
}
