package serial

import (
	"io"
)

// Port is the byte stream the monitor reads reports from.
// Implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory readers (for testing and captured logs)
type Port interface {
	io.ReadCloser
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the firmware's report UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the firmware's UART
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
