package core

// ResyncState tracks a slave driver waiting for the WS edge that marks a
// frame boundary
type ResyncState uint8

const (
	// ResyncIdle: not waiting (master, or slave running in sync)
	ResyncIdle ResyncState = iota
	// ResyncArmed: peripheral disabled, WS edge interrupt enabled
	ResyncArmed
	// ResyncEdgePending: an edge fired and the level is being confirmed
	ResyncEdgePending
	// ResyncResynced: edge confirmed, peripheral re-enabled
	ResyncResynced
)

func (s ResyncState) String() string {
	switch s {
	case ResyncIdle:
		return "idle"
	case ResyncArmed:
		return "armed"
	case ResyncEdgePending:
		return "edge-pending"
	case ResyncResynced:
		return "resynced"
	}
	return "invalid"
}

// arm disables the peripheral, resets the frame and waits for the next
// WS rising edge
func (d *Driver) arm(exti EdgeController) {
	d.disable()
	d.asm.Reset()
	d.b.WS.EnableInterrupt(exti)
	d.resync = ResyncArmed
}

// EdgeInterrupt handles the WS pin edge interrupt. The edge line may be
// shared, so the pin level is re-checked before acting. Edges seen while
// not armed only acknowledge the pending bit.
func (d *Driver) EdgeInterrupt(exti EdgeController) {
	if !d.b.Mode.Valid() || d.b.WS == nil {
		return
	}
	ws := d.b.WS
	ws.ClearInterruptPendingBit()
	if d.b.Mode.Role() != RoleSlave || d.resync != ResyncArmed {
		return
	}

	d.resync = ResyncEdgePending
	if !ws.IsHigh() {
		d.resync = ResyncArmed
		return
	}
	ws.DisableInterrupt(exti)
	if d.b.Mode.Direction() == DirTransmit {
		// The first shift after enable must have data ready
		d.b.Periph.WriteData(0)
	}
	d.enable()
	d.resync = ResyncResynced
	d.stats.Resyncs++
}
