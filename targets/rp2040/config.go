//go:build rp2040

package main

import (
	"machine"

	"i2sframe/core"
)

// GeneratorConfig selects what the pattern generator plays
type GeneratorConfig struct {
	Width      core.Width
	SampleRate uint32
	Data       machine.Pin
	BitClock   machine.Pin // WS is the next pin
	PIO        uint8
	SM         uint8
}

// GetGeneratorConfig returns the build configuration. Change Width to
// match the scenario flashed on the board under test.
func GetGeneratorConfig() GeneratorConfig {
	cfg := GeneratorConfig{
		Width: core.Width32,
	}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *GeneratorConfig) {
	if cfg.Width == 0 {
		cfg.Width = core.Width16
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 8000
	}
	if cfg.Data == 0 {
		cfg.Data = machine.GPIO26
	}
	if cfg.BitClock == 0 {
		cfg.BitClock = machine.GPIO27
	}
}
