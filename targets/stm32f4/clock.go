//go:build stm32f407

package main

import (
	"runtime/volatile"
	"unsafe"

	"i2sframe/core"
)

// Cortex-M4 debug registers
const (
	demcrAddr    = 0xE000EDFC
	dwtCtrlAddr  = 0xE0001000
	dwtCycntAddr = 0xE0001004

	demcrTRCENA     = 1 << 24
	dwtCtrlCYCCNTEN = 1 << 0
)

var (
	demcr    = (*volatile.Register32)(unsafe.Pointer(uintptr(demcrAddr)))
	dwtCtrl  = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCtrlAddr)))
	dwtCycnt = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCycntAddr)))
)

// InitClock starts the DWT cycle counter and makes it the core time source.
// Frame timestamps are CPU cycles at core.TimerFreq.
func InitClock() {
	demcr.SetBits(demcrTRCENA)
	dwtCycnt.Set(0)
	dwtCtrl.SetBits(dwtCtrlCYCCNTEN)
	core.SetClockSource(GetCycles)
}

// GetCycles reads the cycle counter
func GetCycles() uint32 {
	return dwtCycnt.Get()
}
