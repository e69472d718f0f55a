package core

import "sync/atomic"

// TimerFreq is the default tick rate of the timestamp source (STM32F4 HCLK)
const TimerFreq = 168000000

var (
	// software tick counter, used when no clock source is installed
	systemTicks atomic.Uint32

	// clockSource, when set, replaces the software tick counter. Targets
	// plug in a cycle counter here.
	clockSource func() uint32
)

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	if clockSource != nil {
		return clockSource()
	}
	return systemTicks.Load()
}

// SetTime sets the software tick counter (for testing/simulation)
func SetTime(ticks uint32) {
	systemTicks.Store(ticks)
}

// SetClockSource installs a hardware timestamp source. nil restores the
// software counter.
func SetClockSource(src func() uint32) {
	clockSource = src
}
