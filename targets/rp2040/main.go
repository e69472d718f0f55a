//go:build rp2040

// Command rp2040 is a Philips I2S master that loops the reference pattern.
// Wire its data, BCK and WS pins to a slave receive port of the board under
// test; the board's receiver then checks the frames with the same pattern.
package main

import (
	"machine"
	"time"

	"i2sframe/core"
	"i2sframe/protocol"
)

var encoder = protocol.NewEncoder()

func main() {
	InitClock()

	machine.Serial.Configure(machine.UARTConfig{})
	core.SetDebugWriter(func(msg string) {
		machine.Serial.Write([]byte(msg + "\r\n"))
	})
	core.SetDebugEnabled(true)

	cfg := GetGeneratorConfig()
	sendReport(func(o protocol.OutputBuffer) {
		protocol.EncodeIdentify(o, protocol.Identify{Version: protocol.Version, TimerFreq: timerFreq})
	})

	gen := NewPatternGenerator(cfg.PIO, cfg.SM)
	if err := gen.Init(cfg); err != nil {
		core.DebugPrintln("pio init failed: " + err.Error())
		for {
			time.Sleep(time.Second)
		}
	}
	core.PostLog("pio", "generator started")

	frames := patternFrames(cfg.Width)
	lastReport := GetHardwareUptime()
	for {
		for _, f := range frames {
			gen.WriteFrame(f)
		}

		core.DrainLog(func(ev core.LogEvent) {
			sendReport(func(o protocol.OutputBuffer) { protocol.EncodeLog(o, ev) })
		})

		if now := GetHardwareUptime(); now-lastReport >= timerFreq {
			lastReport = now
			sendReport(func(o protocol.OutputBuffer) {
				protocol.EncodeStats(o, protocol.StatsReport{
					Stats:      core.Stats{Frames: gen.Frames()},
					LogDropped: core.LogDropped(),
				})
			})
		}
	}
}

// patternFrames converts the reference pattern of a width to raw frames
func patternFrames(width core.Width) []core.Frame {
	var frames []core.Frame
	if width == core.Width16 {
		for _, s := range core.TestPattern16 {
			frames = append(frames, core.Frame16(s))
		}
	} else {
		for _, s := range core.TestPattern32 {
			frames = append(frames, core.Frame32(s))
		}
	}
	return frames
}

func sendReport(fn func(protocol.OutputBuffer)) {
	block, err := encoder.Encode(fn)
	if err != nil {
		return
	}
	machine.Serial.Write(block)
}
