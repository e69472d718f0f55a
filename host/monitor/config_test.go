package monitor

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"device": "/dev/ttyACM1"}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Device != "/dev/ttyACM1" {
		t.Errorf("Expected device /dev/ttyACM1, got %s", cfg.Device)
	}
	if cfg.Baud != 115200 {
		t.Errorf("Expected default baud 115200, got %d", cfg.Baud)
	}
	if cfg.PortName(0) != "spi2" || cfg.PortName(1) != "spi3" {
		t.Errorf("Unexpected default port names %+v", cfg.Ports)
	}
	if cfg.PortName(7) != "port7" {
		t.Errorf("Expected fallback name port7, got %s", cfg.PortName(7))
	}
}

func TestLoadConfigPorts(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{
		"baud": 921600,
		"check_pattern": true,
		"ports": [{"id": 4, "name": "codec"}]
	}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Baud != 921600 || !cfg.CheckPattern {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.PortName(4) != "codec" {
		t.Errorf("Expected codec, got %s", cfg.PortName(4))
	}
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []string{
		`{"baud": -1}`,
		`{"ports": [{"id": 1, "name": "a"}, {"id": 1, "name": "b"}]}`,
		`{"device": 5}`,
	}
	for _, tc := range testCases {
		if _, err := LoadConfig([]byte(tc)); err == nil {
			t.Errorf("Expected error for %s", tc)
		}
	}
}
