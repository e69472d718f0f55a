//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt mask
type State = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}

// resourceLock is empty on the MCU: masking interrupts is the lock
type resourceLock struct{}

func (l *resourceLock) lock()   {}
func (l *resourceLock) unlock() {}
