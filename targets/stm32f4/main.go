//go:build stm32f407

// Command stm32f4 runs the loopback scenarios on an STM32F407 with SPI2
// wired to SPI3 and streams the results as telemetry reports on the
// default UART.
package main

import (
	"device/stm32"
	"runtime/interrupt"
	"time"

	"i2sframe/core"
)

var (
	exti = core.NewResource[core.EdgeController](extiController{})

	txSrc, txq  = core.NewTxQueues(core.DefaultQueueCapacity)
	rxSink, rxq = core.NewRxQueues(core.DefaultQueueCapacity)

	// SPI2 always receives, SPI3 always transmits
	rxPort = core.NewReceivePort("spi2", exti, rxSink)
	txPort = core.NewTransmitPort("spi3", exti, txSrc)
)

func handleSPI2(interrupt.Interrupt) {
	rxPort.HandleDataInterrupt()
}

func handleSPI3(interrupt.Interrupt) {
	txPort.HandleDataInterrupt()
}

func handleEXTI4(interrupt.Interrupt) {
	txPort.HandleEdgeInterrupt()
}

func handleEXTI15_10(interrupt.Interrupt) {
	rxPort.HandleEdgeInterrupt()
}

func initInterrupts() {
	// WS edges preempt the data interrupts so a resync is never delayed
	// by a frame in progress
	for _, intr := range []interrupt.Interrupt{
		interrupt.New(stm32.IRQ_EXTI4, handleEXTI4),
		interrupt.New(stm32.IRQ_EXTI15_10, handleEXTI15_10),
	} {
		intr.SetPriority(0x40)
		intr.Enable()
	}
	for _, intr := range []interrupt.Interrupt{
		interrupt.New(stm32.IRQ_SPI2, handleSPI2),
		interrupt.New(stm32.IRQ_SPI3, handleSPI3),
	} {
		intr.SetPriority(0x80)
		intr.Enable()
	}
}

func main() {
	InitClock()
	initReports()

	initI2SClocks()
	initI2SPins()
	spi2WS.route(extiPortB)
	spi3WS.route(extiPortA)
	initInterrupts()

	passed := 0
	for _, s := range scenarios {
		if s.run() {
			passed++
		}
	}
	core.DebugPrintln("passed " + itoa(passed) + "/" + itoa(len(scenarios)))
	core.DebugPrintln("totals " + totals.String())

	for {
		flushLogs()
		time.Sleep(100 * time.Millisecond)
	}
}

// itoa converts int to string without importing strconv
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
