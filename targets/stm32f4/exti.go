//go:build stm32f407

package main

import (
	"device/stm32"
	"machine"
	"runtime/volatile"

	"i2sframe/core"
)

// GPIO port codes for SYSCFG_EXTICRx
const (
	extiPortA = 0
	extiPortB = 1
)

// extiController masks and unmasks EXTI lines. It is shared by both WS
// pins and only touched under the core.Resource lock.
type extiController struct{}

func (extiController) SetLineMask(line uint8, enabled bool) {
	if enabled {
		stm32.EXTI.IMR.SetBits(1 << line)
	} else {
		stm32.EXTI.IMR.ClearBits(1 << line)
	}
}

// wsPin is a word select pin routed to an EXTI line on its rising edge
type wsPin struct {
	pin  machine.Pin
	line uint8
}

var (
	spi2WS = &wsPin{pin: machine.PB12, line: 12}
	spi3WS = &wsPin{pin: machine.PA4, line: 4}
)

// route connects the pin's port to its EXTI line and selects the rising
// edge. The line stays masked until a slave arms it.
func (w *wsPin) route(port uint32) {
	cr := [...]*volatile.Register32{
		&stm32.SYSCFG.EXTICR1,
		&stm32.SYSCFG.EXTICR2,
		&stm32.SYSCFG.EXTICR3,
		&stm32.SYSCFG.EXTICR4,
	}[w.line/4]
	shift := uint32(w.line%4) * 4
	cr.ReplaceBits(port, 0xF, uint8(shift))

	stm32.EXTI.IMR.ClearBits(1 << w.line)
	stm32.EXTI.FTSR.ClearBits(1 << w.line)
	stm32.EXTI.RTSR.SetBits(1 << w.line)
	w.ClearInterruptPendingBit()
}

func (w *wsPin) EnableInterrupt(exti core.EdgeController) {
	exti.SetLineMask(w.line, true)
}

func (w *wsPin) DisableInterrupt(exti core.EdgeController) {
	exti.SetLineMask(w.line, false)
}

func (w *wsPin) ClearInterruptPendingBit() {
	// PR is write-one-to-clear
	stm32.EXTI.PR.Set(1 << w.line)
}

func (w *wsPin) IsHigh() bool {
	return w.pin.Get()
}
