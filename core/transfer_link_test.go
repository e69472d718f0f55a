package core_test

import (
	"testing"

	"i2sframe/core"
	"i2sframe/sim"
)

func TestPolledMasterTransmit(t *testing.T) {
	ec := sim.NewEXTI()
	exti := core.NewResource[core.EdgeController](ec)
	bus := sim.NewBus(core.Width16, ec)
	master := bus.NewPeripheral(core.RoleMaster, core.DirTransmit)
	slave := bus.NewPeripheral(core.RoleSlave, core.DirReceive)
	pin := bus.NewPin(4)

	sink, rxq := core.NewRxQueues(core.DefaultQueueCapacity)
	rx := core.NewReceivePort("spi2", exti, sink)
	disp := sim.NewDispatcher(bus)
	disp.OnPeripheral(slave, rx.HandleDataInterrupt)
	disp.OnPin(pin, rx.HandleEdgeInterrupt)
	t.Cleanup(func() { core.DrainLog(nil) })

	if err := rx.Start(core.Binding{Mode: core.ModeSlaveReceive16, Periph: slave, WS: pin}); err != nil {
		t.Fatal(err)
	}

	tr := core.NewTransfer(core.Binding{Mode: core.ModeMasterTransmit16, Periph: master})
	next := 0
	poll := func(uint64) {
		f := core.Frame{}
		if next < len(core.TestPattern16) {
			f = core.Frame16(core.TestPattern16[next])
		}
		if err := tr.Write(f); err == nil {
			next++
		}
	}
	tr.Enable()
	poll(0)
	disp.AfterTick = poll

	if !disp.RunUntil(func() bool { return rxq.S16.Len() == core.DefaultQueueCapacity }, 200) {
		t.Fatalf("Receive queue not full, len %d", rxq.S16.Len())
	}
	got := core.Samples(core.Drain(rxq.S16, nil))
	for i, want := range core.TestPattern16 {
		if got[i] != want {
			t.Errorf("Frame %d: expected %+v, got %+v", i, want, got[i])
		}
	}
}

func TestPolledMasterReceive(t *testing.T) {
	l := newLink(t, core.Width32, core.DirReceive)
	core.Preload(l.txq.S32, core.TestPattern32)

	// the master side is polled: drop its interrupt registration by
	// building a dispatcher that only serves the slave
	disp := sim.NewDispatcher(l.bus)
	disp.OnPeripheral(l.slave, l.txPort.HandleDataInterrupt)
	disp.OnPin(l.pin, l.txPort.HandleEdgeInterrupt)

	if err := l.txPort.Start(core.Binding{Mode: l.slaveMode, Periph: l.slave, WS: l.pin}); err != nil {
		t.Fatal(err)
	}
	tr := core.NewTransfer(core.Binding{Mode: l.masterMode, Periph: l.master})

	var got []core.Sample32
	disp.AfterTick = func(uint64) {
		if f, err := tr.Read(); err == nil {
			got = append(got, f.Sample32())
		}
	}
	tr.Enable()
	disp.RunUntil(func() bool { return len(got) >= len(core.TestPattern32) }, 200)

	if !core.MatchAfterColdStart(got, core.TestPattern32) {
		t.Errorf("Received %08X", got)
	}
	if tr.Stats().ChannelErrors == 0 {
		t.Error("Expected channel errors while the link came up")
	}
}

func TestPolledSlaveReceiveResync(t *testing.T) {
	l := newLink(t, core.Width32, core.DirTransmit)
	c := core.Sample32{Left: 0x13572468, Right: 0x0F1E2D3C}

	disp := sim.NewDispatcher(l.bus)
	disp.OnPeripheral(l.master, l.txPort.HandleDataInterrupt)

	tr := core.NewTransfer(core.Binding{Mode: l.slaveMode, Periph: l.slave, WS: l.pin})
	var got []core.Sample32
	disp.AfterTick = func(uint64) {
		for l.txq.S32.Ready() {
			l.txq.S32.Enqueue(c)
		}
		if f, err := tr.Read(); err == nil {
			got = append(got, f.Sample32())
		}
	}
	tr.Enable()
	if err := l.txPort.Start(core.Binding{Mode: l.masterMode, Periph: l.master}); err != nil {
		t.Fatal(err)
	}

	disp.Run(60)
	before := len(got)
	if before == 0 {
		t.Fatal("No frames before the slip")
	}
	if s := tr.Stats(); s.FrameErrors != 0 || s.Resyncs != 1 {
		t.Fatalf("Unexpected stats before the slip %+v", s)
	}

	l.bus.Slip(1)
	disp.Run(120)

	s := tr.Stats()
	if s.FrameErrors == 0 {
		t.Fatalf("Expected a frame error after the slip, stats %+v", s)
	}
	if s.Resyncs < 2 {
		t.Errorf("Expected a second resync, stats %+v", s)
	}
	if !l.slave.IsEnabled() || tr.Resync() != core.ResyncResynced {
		t.Errorf("Slave should be running again, resync %s", tr.Resync())
	}
	if len(got) < before+4 {
		t.Fatalf("Too few frames after recovery: %d", len(got)-before)
	}
	for i, f := range got[len(got)-4:] {
		if f != c {
			t.Errorf("Recovered frame %d: expected %08X, got %08X", i, c, f)
		}
	}
}
