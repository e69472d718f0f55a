//go:build stm32f407

package main

import (
	"context"
	"time"

	"i2sframe/core"
)

const scenarioTimeout = 2 * time.Second

// totals accumulates the driver counters of every scenario
var totals core.Stats

// scenario runs the reference pattern from SPI3 to SPI2 over the wired
// loopback. SPI3 takes the opposite role of SPI2.
type scenario struct {
	name   string
	width  core.Width
	rxRole core.Role
	polled bool // SPI3 is driven by a polled Transfer instead of interrupts
}

var scenarios = []scenario{
	{name: "master receive + slave transmit 32", width: core.Width32, rxRole: core.RoleMaster},
	{name: "slave receive + master transmit 32", width: core.Width32, rxRole: core.RoleSlave},
	{name: "master receive + slave transmit 16", width: core.Width16, rxRole: core.RoleMaster},
	{name: "slave receive + master transmit 16", width: core.Width16, rxRole: core.RoleSlave},
	{name: "slave receive + master transfer 32", width: core.Width32, rxRole: core.RoleSlave, polled: true},
	{name: "slave receive + master transfer 16", width: core.Width16, rxRole: core.RoleSlave, polled: true},
}

func (s scenario) txRole() core.Role {
	if s.rxRole == core.RoleMaster {
		return core.RoleSlave
	}
	return core.RoleMaster
}

func binding(mode core.Mode, periph *i2sPeripheral, ws *wsPin) core.Binding {
	b := core.Binding{Mode: mode, Periph: periph}
	if mode.Role() == core.RoleSlave {
		b.WS = ws
	}
	return b
}

// run executes the scenario, reports what SPI2 received and returns
// whether it matched the pattern
func (s scenario) run() bool {
	core.DebugPrintln(s.name)

	rxMode := core.NewMode(s.rxRole, core.DirReceive, s.width)
	txMode := core.NewMode(s.txRole(), core.DirTransmit, s.width)
	spi2.Configure(rxMode)
	spi3.Configure(txMode)

	ctx, cancel := context.WithTimeout(context.Background(), scenarioTimeout)
	defer cancel()

	var err error
	if s.polled {
		err = s.runPolled(ctx, rxMode, txMode)
	} else {
		err = s.runInterrupt(ctx, rxMode, txMode)
	}
	if err != nil {
		core.DebugPrintln(s.name + ": " + err.Error())
	}

	rxPort.Stop(rxMode)
	if !s.polled {
		sendStats(reportSPI3, txPort.Stats())
		totals = totals.Add(txPort.Stats())
		txPort.Stop(txMode)
	}
	sendStats(reportSPI2, rxPort.Stats())
	totals = totals.Add(rxPort.Stats())
	flushLogs()

	// leftovers must not leak into the next scenario
	core.Drain(txSrc.S16, nil)
	core.Drain(txSrc.S32, nil)

	ok := s.collect()
	if ok {
		core.DebugPrintln(s.name + ": ok")
	} else {
		core.DebugPrintln(s.name + ": failed")
	}
	return ok
}

// runInterrupt preloads the pattern and lets both interrupt driven ports
// run until the receive queue is full. The slave is armed before the
// master starts clocking.
func (s scenario) runInterrupt(ctx context.Context, rxMode, txMode core.Mode) error {
	if s.width == core.Width32 {
		core.Preload(txq.S32, core.TestPattern32)
	} else {
		core.Preload(txq.S16, core.TestPattern16)
	}

	rx := binding(rxMode, spi2, spi2WS)
	tx := binding(txMode, spi3, spi3WS)
	first, second := rxPort.Start, txPort.Start
	firstB, secondB := rx, tx
	if s.rxRole == core.RoleMaster {
		first, second = txPort.Start, rxPort.Start
		firstB, secondB = tx, rx
	}
	if err := first(firstB); err != nil {
		return err
	}
	if err := second(secondB); err != nil {
		return err
	}
	return s.waitFull(ctx)
}

// runPolled arms SPI2 as an interrupt driven slave receiver and clocks
// the pattern out of SPI3 with a polled Transfer. One silent frame leads
// the pattern since the slave only starts after the first WS edge.
func (s scenario) runPolled(ctx context.Context, rxMode, txMode core.Mode) error {
	if err := rxPort.Start(binding(rxMode, spi2, spi2WS)); err != nil {
		return err
	}

	frames := []core.Frame{{}}
	if s.width == core.Width32 {
		for _, smp := range core.TestPattern32 {
			frames = append(frames, core.Frame32(smp))
		}
	} else {
		for _, smp := range core.TestPattern16 {
			frames = append(frames, core.Frame16(smp))
		}
	}

	t := core.NewTransfer(binding(txMode, spi3, spi3WS))
	t.Enable()
	defer t.Disable()

	if err := t.WriteAll(ctx, frames); err != nil {
		return err
	}
	silence := []core.Frame{{}}
	for !s.rxFull() {
		if err := t.WriteAll(ctx, silence); err != nil {
			return err
		}
	}
	err := t.Flush(ctx)
	sendStats(reportSPI3, t.Stats())
	totals = totals.Add(t.Stats())
	return err
}

func (s scenario) rxFull() bool {
	if s.width == core.Width32 {
		return rxq.S32.Len() == rxq.S32.Cap()
	}
	return rxq.S16.Len() == rxq.S16.Cap()
}

func (s scenario) waitFull(ctx context.Context) error {
	if s.width == core.Width32 {
		return core.WaitFull(ctx, rxq.S32)
	}
	return core.WaitFull(ctx, rxq.S16)
}

// collect drains the receive queue, reports every frame and checks the
// sequence against the pattern
func (s scenario) collect() bool {
	if s.width == core.Width32 {
		got := core.Drain(rxq.S32, nil)
		sendFrames32(reportSPI2, got)
		return check(core.Samples(got), core.TestPattern32, core.Frame32, s.width)
	}
	got := core.Drain(rxq.S16, nil)
	sendFrames16(reportSPI2, got)
	return check(core.Samples(got), core.TestPattern16, core.Frame16, s.width)
}

// check compares got against want and prints both sequences side by side
// when they differ
func check[S comparable](got, want []S, frame func(S) core.Frame, w core.Width) bool {
	if core.MatchAfterColdStart(got, want) {
		return true
	}
	for i := range want {
		line := "  exp " + frame(want[i]).Format(w)
		if i < len(got) {
			line += "  got " + frame(got[i]).Format(w)
		}
		core.DebugPrintln(line)
	}
	return false
}
