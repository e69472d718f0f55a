// Package sim provides a slot-accurate simulation of an I2S link for
// exercising the core drivers without hardware.
//
// A [Bus] carries one link: a clock master and any number of slaves. Time
// advances one half-word slot per tick, and only while the master
// peripheral is enabled. Each [Peripheral] implements
// [core.I2SPeripheral] with the STM32 status semantics the drivers rely on:
//
//   - TXE is set once the holding register has been shifted out; a shift
//     with an empty register sends zero and raises UDR.
//   - RXNE is set when a half-word is latched; a latch while RXNE is still
//     set drops the new data and raises OVR.
//   - CHSIDE names the channel of the slot the flag refers to: the next
//     slot for transmit, the latched slot for receive.
//   - A running slave compares its own slot count against WS and raises
//     FRE when they disagree.
//   - UDR and FRE clear on a status read, OVR on a data read followed by a
//     status read.
//
// # Slot Layout
//
// WS idles low while the clock is stopped. When the master is enabled the
// link opens with one right channel (WS high) before the first left
// channel, so a slave waiting for a rising WS edge sees one right away:
//
//	slot:  0    1    2    3    4    5    6    7
//	16-bit R    L    R    L    R    L    R    L
//	32-bit R.0  R.1  L.0  L.1  R.0  R.1  L.0  L.1
//
// A slave starts shifting at the first left MSB slot after it is enabled.
//
// # Interrupts
//
// [EXTI] models the shared edge controller and [Pin] a WS input routed to
// one of its lines. A [Dispatcher] plays the part of the interrupt
// controller: after every tick it calls the registered handlers while
// their sources are pending.
//
// # Usage
//
//	exti := sim.NewEXTI()
//	bus := sim.NewBus(core.Width32, exti)
//	master := bus.NewPeripheral(core.RoleMaster, core.DirTransmit)
//	slave := bus.NewPeripheral(core.RoleSlave, core.DirReceive)
//	ws := bus.NewPin(12)
//
//	d := sim.NewDispatcher(bus)
//	d.OnPeripheral(master, txPort.HandleDataInterrupt)
//	d.OnPeripheral(slave, rxPort.HandleDataInterrupt)
//	d.OnPin(ws, rxPort.HandleEdgeInterrupt)
//	d.Run(64)
package sim
