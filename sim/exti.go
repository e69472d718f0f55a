package sim

import "i2sframe/core"

// EXTI is a simulated external interrupt controller. It implements
// core.EdgeController.
type EXTI struct {
	mask uint32
}

// NewEXTI returns a controller with every line masked
func NewEXTI() *EXTI {
	return &EXTI{}
}

// SetLineMask enables or disables edge interrupts on line
func (e *EXTI) SetLineMask(line uint8, enabled bool) {
	if enabled {
		e.mask |= 1 << line
	} else {
		e.mask &^= 1 << line
	}
}

// LineEnabled reports whether line is unmasked
func (e *EXTI) LineEnabled(line uint8) bool {
	return e.mask&(1<<line) != 0
}

// Pin is a WS input wired to a bus and routed to one EXTI line. It
// implements core.WSPin.
type Pin struct {
	bus     *Bus
	line    uint8
	pending bool
	edges   int
}

// Line returns the EXTI line of the pin
func (p *Pin) Line() uint8 {
	return p.line
}

// EnableInterrupt unmasks the pin's line on exti
func (p *Pin) EnableInterrupt(exti core.EdgeController) {
	exti.SetLineMask(p.line, true)
}

// DisableInterrupt masks the pin's line on exti
func (p *Pin) DisableInterrupt(exti core.EdgeController) {
	exti.SetLineMask(p.line, false)
}

// ClearInterruptPendingBit acknowledges the pending edge
func (p *Pin) ClearInterruptPendingBit() {
	p.pending = false
}

// IsHigh returns the current WS level
func (p *Pin) IsHigh() bool {
	return p.bus.ws
}

// Pending reports whether an edge interrupt is waiting
func (p *Pin) Pending() bool {
	return p.pending
}

// Edges returns the number of edges latched as pending
func (p *Pin) Edges() int {
	return p.edges
}

// raise latches a rising edge if the line is unmasked
func (p *Pin) raise() {
	if p.bus.exti != nil && p.bus.exti.LineEnabled(p.line) {
		p.pending = true
		p.edges++
	}
}
