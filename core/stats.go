package core

// Stats are per-driver event counters, updated from interrupt context
type Stats struct {
	Interrupts    uint32 // data interrupts handled
	Frames        uint32 // frames completed (receive) or loaded (transmit)
	ChannelErrors uint32 // half-words on the wrong channel
	FrameErrors   uint32 // FRE events (slave only)
	Underruns     uint32
	Overruns      uint32
	Starved       uint32 // transmit frames sent as silence, queue empty
	Dropped       uint32 // received frames lost to a full queue
	Backpressure  uint32 // receive stops because the queue filled up
	Resyncs       uint32 // slave restarts on a WS edge
}

// Add returns the element-wise sum of s and o
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Interrupts:    s.Interrupts + o.Interrupts,
		Frames:        s.Frames + o.Frames,
		ChannelErrors: s.ChannelErrors + o.ChannelErrors,
		FrameErrors:   s.FrameErrors + o.FrameErrors,
		Underruns:     s.Underruns + o.Underruns,
		Overruns:      s.Overruns + o.Overruns,
		Starved:       s.Starved + o.Starved,
		Dropped:       s.Dropped + o.Dropped,
		Backpressure:  s.Backpressure + o.Backpressure,
		Resyncs:       s.Resyncs + o.Resyncs,
	}
}

// String formats the counters for the debug writer
func (s Stats) String() string {
	return "irq=" + utoa(s.Interrupts) +
		" frames=" + utoa(s.Frames) +
		" chan_err=" + utoa(s.ChannelErrors) +
		" fre=" + utoa(s.FrameErrors) +
		" udr=" + utoa(s.Underruns) +
		" ovr=" + utoa(s.Overruns) +
		" starved=" + utoa(s.Starved) +
		" dropped=" + utoa(s.Dropped) +
		" stops=" + utoa(s.Backpressure) +
		" resyncs=" + utoa(s.Resyncs)
}
