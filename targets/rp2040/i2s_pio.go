//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"i2sframe/core"
)

// Philips I2S master transmitter.
//
// Side-set bit 0 drives BCK, bit 1 drives WS. WS is low for the left
// channel and changes while the last bit of the previous channel is out,
// so each MSB follows the WS edge by one bit clock. X counts the bits of
// a channel; the last bit of each channel is shifted by the instruction
// that flips WS.
const (
	i2sBitloopLeft  = 0
	i2sBitloopRight = 4
	i2sEntryPoint   = 7
)

func buildI2SProgram(width core.Width) []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 2}
	bits := uint8(width) - 2
	return []uint16{
		// .wrap_target
		// bitloop_left:
		asm.Out(rp2pio.OutDestPins, 1).Side(0b00).Encode(),               // 0: out pins, 1   BCK=0 WS=0
		asm.Jmp(i2sBitloopLeft, rp2pio.JmpXNZeroDec).Side(0b01).Encode(), // 1: jmp x--, 0    BCK=1 WS=0
		asm.Out(rp2pio.OutDestPins, 1).Side(0b10).Encode(),               // 2: out pins, 1   BCK=0 WS=1
		asm.Set(rp2pio.SetDestX, bits).Side(0b11).Encode(),               // 3: set x, bits   BCK=1 WS=1
		// bitloop_right:
		asm.Out(rp2pio.OutDestPins, 1).Side(0b10).Encode(),                // 4: out pins, 1   BCK=0 WS=1
		asm.Jmp(i2sBitloopRight, rp2pio.JmpXNZeroDec).Side(0b11).Encode(), // 5: jmp x--, 4    BCK=1 WS=1
		asm.Out(rp2pio.OutDestPins, 1).Side(0b00).Encode(),                // 6: out pins, 1   BCK=0 WS=0
		asm.Set(rp2pio.SetDestX, bits).Side(0b01).Encode(),                // 7: set x, bits   BCK=1 WS=0
		// .wrap
	}
}

const i2sPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// PatternGenerator plays frames as an I2S master from a PIO state machine.
// It clocks the slave ports of the board under test.
type PatternGenerator struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	width  core.Width
	offset uint8
	frames uint32
}

// NewPatternGenerator claims a state machine for the generator
func NewPatternGenerator(pioNum, smNum uint8) *PatternGenerator {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &PatternGenerator{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the program and starts clocking
func (g *PatternGenerator) Init(cfg GeneratorConfig) error {
	g.width = cfg.Width
	g.sm.TryClaim()

	program := buildI2SProgram(cfg.Width)
	offset, err := g.pio.AddProgram(program, i2sPIOOrigin)
	if err != nil {
		return err
	}
	g.offset = offset

	pinCfg := machine.PinConfig{Mode: g.pio.PinMode()}
	cfg.Data.Configure(pinCfg)
	cfg.BitClock.Configure(pinCfg)
	(cfg.BitClock + 1).Configure(pinCfg)

	smCfg := rp2pio.DefaultStateMachineConfig()
	smCfg.SetOutPins(cfg.Data, 1)
	smCfg.SetSidesetParams(2, false, false)
	smCfg.SetSidesetPins(cfg.BitClock)

	// MSB first, autopull every 32 bits
	smCfg.SetOutShift(false, true, 32)
	smCfg.SetWrap(offset+uint8(len(program))-1, offset)

	// Two instructions per bit
	freq := cfg.SampleRate * 2 * uint32(cfg.Width) * 2
	whole, frac, err := rp2pio.ClkDivFromFrequency(freq, machine.CPUFrequency())
	if err != nil {
		return err
	}
	smCfg.SetClkDivIntFrac(whole, frac)

	g.sm.Init(offset, smCfg)

	pinMask := uint32(1<<cfg.Data) | uint32(0b11<<cfg.BitClock)
	g.sm.SetPindirsMasked(pinMask, pinMask)
	g.sm.SetPinsMasked(0, pinMask)

	g.sm.Exec(rp2pio.AssemblerV0{SidesetBits: 2}.Jmp(offset+i2sEntryPoint, rp2pio.JmpAlways).Encode())
	g.sm.SetEnabled(true)
	return nil
}

// WriteFrame queues one frame, waiting for FIFO space
func (g *PatternGenerator) WriteFrame(f core.Frame) {
	if g.width == core.Width16 {
		g.put(f.Left<<16 | f.Right&0xFFFF)
	} else {
		g.put(f.Left)
		g.put(f.Right)
	}
	g.frames++
}

func (g *PatternGenerator) put(word uint32) {
	for g.sm.IsTxFIFOFull() {
	}
	g.sm.TxPut(word)
}

// Frames returns the number of frames queued so far
func (g *PatternGenerator) Frames() uint32 {
	return g.frames
}

// Stop halts the state machine and drops queued words
func (g *PatternGenerator) Stop() {
	g.sm.SetEnabled(false)
	g.sm.ClearFIFOs()
	g.sm.Restart()
}
