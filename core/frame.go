package core

// FrameState is the position of the next expected half-word within a frame.
// 16-bit frames only use StateLeftMsb and StateRightMsb.
type FrameState uint8

const (
	StateLeftMsb FrameState = iota
	StateLeftLsb
	StateRightMsb
	StateRightLsb
)

func (s FrameState) String() string {
	switch s {
	case StateLeftMsb:
		return "left-msb"
	case StateLeftLsb:
		return "left-lsb"
	case StateRightMsb:
		return "right-msb"
	case StateRightLsb:
		return "right-lsb"
	}
	return "invalid"
}

// Frame is the raw accumulator for one stereo sample. For 16-bit width only
// the low half of each field is used.
type Frame struct {
	Left  uint32
	Right uint32
}

// Format renders the frame as "L=0x.. R=0x.." at the given width
func (f Frame) Format(w Width) string {
	if w == Width16 {
		return "L=" + hex16(uint16(f.Left)) + " R=" + hex16(uint16(f.Right))
	}
	return "L=" + hex32(f.Left) + " R=" + hex32(f.Right)
}

// halfOp selects how a half-word combines with the accumulator field
type halfOp uint8

const (
	opHigh  halfOp = iota // field = data << 16
	opLow                 // field |= data
	opWhole               // field = data (16-bit width)
)

type transition struct {
	valid    bool
	next     FrameState
	right    bool // operates on Frame.Right
	op       halfOp
	load     bool // transmit takes a fresh frame before emitting
	complete bool // receive has a full frame after this half-word
}

// Transition tables indexed by [state][channel]. Any pair not marked valid
// is a protocol violation and resets the assembler.
var table32 = [4][2]transition{
	StateLeftMsb: {
		ChannelLeft: {valid: true, next: StateLeftLsb, op: opHigh, load: true},
	},
	StateLeftLsb: {
		ChannelLeft: {valid: true, next: StateRightMsb, op: opLow},
	},
	StateRightMsb: {
		ChannelRight: {valid: true, next: StateRightLsb, right: true, op: opHigh},
	},
	StateRightLsb: {
		ChannelRight: {valid: true, next: StateLeftMsb, right: true, op: opLow, complete: true},
	},
}

var table16 = [4][2]transition{
	StateLeftMsb: {
		ChannelLeft: {valid: true, next: StateRightMsb, op: opWhole, load: true},
	},
	StateRightMsb: {
		ChannelRight: {valid: true, next: StateLeftMsb, right: true, op: opWhole, complete: true},
	},
}

func lookup(w Width, s FrameState, ch Channel) transition {
	if s > StateRightLsb || ch > ChannelRight {
		return transition{}
	}
	if w == Width32 {
		return table32[s][ch]
	}
	return table16[s][ch]
}

// StepReceive feeds one received half-word into the frame accumulator.
// complete is true when the half-word finished a frame; f then holds it.
// ok is false on a channel/state mismatch, in which case the state is
// reset to StateLeftMsb and the accumulator cleared.
func StepReceive(w Width, s FrameState, ch Channel, f Frame, data uint16) (next FrameState, out Frame, complete, ok bool) {
	t := lookup(w, s, ch)
	if !t.valid {
		return StateLeftMsb, Frame{}, false, false
	}

	field := &f.Left
	if t.right {
		field = &f.Right
	}
	switch t.op {
	case opHigh:
		*field = uint32(data) << 16
	case opLow:
		*field |= uint32(data)
	case opWhole:
		*field = uint32(data)
	}
	return t.next, f, t.complete, true
}

// FrameSource supplies the next frame to transmit
type FrameSource interface {
	// NextFrame returns the next frame, or the zero frame when none is queued
	NextFrame() Frame
}

// FrameSourceFunc adapts a function to FrameSource
type FrameSourceFunc func() Frame

func (fn FrameSourceFunc) NextFrame() Frame { return fn() }

// StepTransmit produces the half-word to write for the given channel.
// src is consulted once per frame, on the first left half-word. A nil src
// sends silence. On a mismatch the state is reset and zero is emitted.
func StepTransmit(w Width, s FrameState, ch Channel, f Frame, src FrameSource) (next FrameState, out Frame, data uint16, ok bool) {
	t := lookup(w, s, ch)
	if !t.valid {
		return StateLeftMsb, Frame{}, 0, false
	}

	if t.load {
		f = Frame{}
		if src != nil {
			f = src.NextFrame()
		}
	}
	field := f.Left
	if t.right {
		field = f.Right
	}
	switch t.op {
	case opHigh:
		data = uint16(field >> 16)
	default:
		data = uint16(field)
	}
	return t.next, f, data, true
}

// Assembler owns a frame state machine for one bound driver
type Assembler struct {
	Width Width
	State FrameState
	Frame Frame
}

// NewAssembler returns an assembler for the given width in its initial state
func NewAssembler(w Width) Assembler {
	return Assembler{Width: w}
}

// Reset returns the assembler to the start of a frame
func (a *Assembler) Reset() {
	a.State = StateLeftMsb
	a.Frame = Frame{}
}

// Receive applies a received half-word. It returns the frame and true when
// the frame completed, or ErrInvalidTransition after resetting.
func (a *Assembler) Receive(ch Channel, data uint16) (Frame, bool, error) {
	next, f, complete, ok := StepReceive(a.Width, a.State, ch, a.Frame, data)
	a.State, a.Frame = next, f
	if !ok {
		return Frame{}, false, ErrInvalidTransition
	}
	return f, complete, nil
}

// Transmit returns the half-word for the next write. On a mismatch it
// resets and returns 0 with ErrInvalidTransition; the 0 must still be written.
func (a *Assembler) Transmit(ch Channel, src FrameSource) (uint16, error) {
	next, f, data, ok := StepTransmit(a.Width, a.State, ch, a.Frame, src)
	a.State, a.Frame = next, f
	if !ok {
		return 0, ErrInvalidTransition
	}
	return data, nil
}
