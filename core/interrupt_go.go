//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// disableInterrupts is a no-op on regular Go (for testing)
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go (for testing)
func restoreInterrupts(state State) {
	// No-op
}

// resourceLock serializes handlers driven from goroutines (simulation, tests)
type resourceLock struct {
	mu sync.Mutex
}

func (l *resourceLock) lock()   { l.mu.Lock() }
func (l *resourceLock) unlock() { l.mu.Unlock() }
