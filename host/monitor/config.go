package monitor

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config describes where the monitor reads from and how it labels ports
type Config struct {
	Device        string       `json:"device"`
	Baud          int          `json:"baud"`
	ReadTimeoutMS int          `json:"read_timeout_ms"`
	Ports         []PortConfig `json:"ports"`
	CheckPattern  bool         `json:"check_pattern"`
	Quiet         bool         `json:"quiet"` // only print logs, stats and check results
}

// PortConfig names a port id carried in frame and stats reports
type PortConfig struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, fmt.Errorf("parse monitor config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigFile reads and parses a JSON configuration file
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monitor config: %w", err)
	}
	return LoadConfig(data)
}

// DefaultConfig returns the configuration for the stm32f4 firmware
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Device == "" {
		config.Device = "/dev/ttyUSB0"
	}
	if config.Baud == 0 {
		config.Baud = 115200
	}
	if config.ReadTimeoutMS == 0 {
		config.ReadTimeoutMS = 100
	}

	// Port ids used by targets/stm32f4
	if len(config.Ports) == 0 {
		config.Ports = []PortConfig{
			{ID: 0, Name: "spi2"},
			{ID: 1, Name: "spi3"},
		}
	}
}

// Validate checks values that have no usable default
func (c *Config) Validate() error {
	if c.Baud < 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeoutMS < 0 {
		return fmt.Errorf("invalid read timeout %d", c.ReadTimeoutMS)
	}
	seen := make(map[uint8]bool)
	for _, p := range c.Ports {
		if seen[p.ID] {
			return fmt.Errorf("duplicate port id %d", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// PortName returns the configured name for a port id
func (c *Config) PortName(id uint8) string {
	for _, p := range c.Ports {
		if p.ID == id {
			return p.Name
		}
	}
	return fmt.Sprintf("port%d", id)
}
