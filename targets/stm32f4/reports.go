//go:build stm32f407

package main

import (
	"machine"

	"i2sframe/core"
	"i2sframe/protocol"
)

// Port ids carried in reports, matching the host monitor defaults
const (
	reportSPI2 uint8 = 0
	reportSPI3 uint8 = 1
)

var encoder = protocol.NewEncoder()

// initReports sets up the report UART and routes debug text into log
// reports so the host sees a single framed stream
func initReports() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})
	core.SetDebugWriter(func(msg string) {
		sendLog(core.LogEvent{Time: core.GetTime(), Source: "main", Msg: msg})
	})
	core.SetDebugEnabled(true)
	sendReport(func(o protocol.OutputBuffer) {
		protocol.EncodeIdentify(o, protocol.Identify{Version: protocol.Version, TimerFreq: core.TimerFreq})
	})
}

func sendReport(fn func(protocol.OutputBuffer)) {
	block, err := encoder.Encode(fn)
	if err != nil {
		return
	}
	machine.Serial.Write(block)
}

func sendLog(ev core.LogEvent) {
	sendReport(func(o protocol.OutputBuffer) { protocol.EncodeLog(o, ev) })
}

// flushLogs forwards events posted from interrupt handlers
func flushLogs() {
	core.DrainLog(sendLog)
}

func sendStats(port uint8, s core.Stats) {
	r := protocol.StatsReport{Port: port, Stats: s, LogDropped: core.LogDropped()}
	sendReport(func(o protocol.OutputBuffer) { protocol.EncodeStats(o, r) })
}

func sendFrames32(port uint8, frames []core.Timed[core.Sample32]) {
	for _, f := range frames {
		sendReport(func(o protocol.OutputBuffer) { protocol.EncodeFrame32(o, port, f) })
	}
}

func sendFrames16(port uint8, frames []core.Timed[core.Sample16]) {
	for _, f := range frames {
		sendReport(func(o protocol.OutputBuffer) { protocol.EncodeFrame16(o, port, f) })
	}
}
