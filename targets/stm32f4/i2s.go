//go:build stm32f407

package main

import (
	"device/stm32"
	"machine"

	"i2sframe/core"
)

// SPI_CR2 interrupt enables
const (
	cr2ERRIE  = 1 << 5
	cr2RXNEIE = 1 << 6
	cr2TXEIE  = 1 << 7
)

// SPI_I2SCFGR fields
const (
	i2scfgrCHLEN    = 1 << 0 // 32-bit channel
	i2scfgrDATLEN32 = 2 << 1
	i2scfgrCFGPos   = 8
	i2scfgrSlaveTx  = 0 << i2scfgrCFGPos
	i2scfgrSlaveRx  = 1 << i2scfgrCFGPos
	i2scfgrMasterTx = 2 << i2scfgrCFGPos
	i2scfgrMasterRx = 3 << i2scfgrCFGPos
	i2scfgrI2SE     = 1 << 10
	i2scfgrI2SMOD   = 1 << 11
	i2scfgrPhilips  = 0 << 4
	i2sprODD        = 1 << 8
	i2sprSlowestDiv = 0xFF
)

// RCC bits
const (
	rccAHB1ENRGPIOA = 1 << 0
	rccAHB1ENRGPIOB = 1 << 1
	rccAHB1ENRGPIOC = 1 << 2
	rccAPB1SPI2     = 1 << 14
	rccAPB1SPI3     = 1 << 15
	rccAPB2SYSCFGEN = 1 << 14
	rccCRPLLI2SON   = 1 << 26
	rccCRPLLI2SRDY  = 1 << 27
	rccPLLI2SNPos   = 6
	rccPLLI2SRPos   = 28
	plli2sN         = 192 // 1MHz VCO input * 192
	plli2sR         = 2   // I2SCLK = 96MHz
	afSPI2          = 5
	afSPI3          = 6
)

// i2sPeripheral drives one SPI block in I2S mode. Every method is a single
// register access so the frame logic in core sees the raw status flags.
type i2sPeripheral struct {
	spi    *stm32.SPI_Type
	rccBit uint32
}

var (
	spi2 = &i2sPeripheral{spi: stm32.SPI2, rccBit: rccAPB1SPI2}
	spi3 = &i2sPeripheral{spi: stm32.SPI3, rccBit: rccAPB1SPI3}
)

// initI2SClocks enables the I2S PLL and the peripheral, GPIO and SYSCFG
// clocks
func initI2SClocks() {
	stm32.RCC.AHB1ENR.SetBits(rccAHB1ENRGPIOA | rccAHB1ENRGPIOB | rccAHB1ENRGPIOC)
	stm32.RCC.APB1ENR.SetBits(rccAPB1SPI2 | rccAPB1SPI3)
	stm32.RCC.APB2ENR.SetBits(rccAPB2SYSCFGEN)

	stm32.RCC.PLLI2SCFGR.Set(plli2sN<<rccPLLI2SNPos | plli2sR<<rccPLLI2SRPos)
	stm32.RCC.CR.SetBits(rccCRPLLI2SON)
	for !stm32.RCC.CR.HasBits(rccCRPLLI2SRDY) {
	}
}

// initI2SPins routes SPI2 and SPI3 to the pins wired together on the
// test board: WS PB12-PA4, CK PB13-PC10, SD PB15-PC12
func initI2SPins() {
	cfg := machine.PinConfig{Mode: machine.PinModeSPICLK}
	for _, p := range []machine.Pin{machine.PB12, machine.PB13, machine.PB15} {
		p.ConfigureAltFunc(cfg, afSPI2)
	}
	machine.PA4.ConfigureAltFunc(cfg, afSPI3)
	machine.PC10.ConfigureAltFunc(cfg, afSPI3)
	machine.PC12.ConfigureAltFunc(cfg, afSPI3)
}

// Configure resets the block and programs it for mode, Philips standard,
// at the slowest sample rate the divider allows. The block is left
// disabled with all interrupts masked.
func (p *i2sPeripheral) Configure(mode core.Mode) {
	stm32.RCC.APB1RSTR.SetBits(p.rccBit)
	stm32.RCC.APB1RSTR.ClearBits(p.rccBit)

	cfg := uint32(i2scfgrI2SMOD | i2scfgrPhilips)
	switch {
	case mode.Role() == core.RoleMaster && mode.Direction() == core.DirTransmit:
		cfg |= i2scfgrMasterTx
	case mode.Role() == core.RoleMaster:
		cfg |= i2scfgrMasterRx
	case mode.Direction() == core.DirTransmit:
		cfg |= i2scfgrSlaveTx
	default:
		cfg |= i2scfgrSlaveRx
	}
	if mode.Width() == core.Width32 {
		cfg |= i2scfgrCHLEN | i2scfgrDATLEN32
	}

	p.spi.I2SPR.Set(i2sprSlowestDiv | i2sprODD)
	p.spi.I2SCFGR.Set(cfg)
}

func (p *i2sPeripheral) Status() core.Status {
	return core.Status(p.spi.SR.Get())
}

func (p *i2sPeripheral) ReadData() uint16 {
	return uint16(p.spi.DR.Get())
}

func (p *i2sPeripheral) WriteData(data uint16) {
	p.spi.DR.Set(uint32(data))
}

func (p *i2sPeripheral) Enable() {
	p.spi.I2SCFGR.SetBits(i2scfgrI2SE)
}

func (p *i2sPeripheral) Disable() {
	p.spi.I2SCFGR.ClearBits(i2scfgrI2SE)
}

func (p *i2sPeripheral) SetTxInterrupt(enabled bool) {
	p.setCR2(cr2TXEIE, enabled)
}

func (p *i2sPeripheral) SetRxInterrupt(enabled bool) {
	p.setCR2(cr2RXNEIE, enabled)
}

func (p *i2sPeripheral) SetErrorInterrupt(enabled bool) {
	p.setCR2(cr2ERRIE, enabled)
}

func (p *i2sPeripheral) setCR2(bit uint32, enabled bool) {
	if enabled {
		p.spi.CR2.SetBits(bit)
	} else {
		p.spi.CR2.ClearBits(bit)
	}
}
