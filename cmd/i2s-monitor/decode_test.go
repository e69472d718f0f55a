package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"i2sframe/core"
	"i2sframe/host/monitor"
	"i2sframe/protocol"
)

// writeCapture writes the 16-bit pattern as frame reports, swapping the
// channels of frame swap when it is in range
func writeCapture(t *testing.T, swap int) string {
	t.Helper()
	enc := protocol.NewEncoder()
	var buf bytes.Buffer
	for i, smp := range core.TestPattern16 {
		if i == swap {
			smp.Left, smp.Right = smp.Right, smp.Left
		}
		smp := core.Timed[core.Sample16]{Time: uint32(i), Sample: smp}
		block, err := enc.Encode(func(o protocol.OutputBuffer) { protocol.EncodeFrame16(o, 0, smp) })
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		buf.Write(block)
	}
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeFileExitCode(t *testing.T) {
	testCases := []struct {
		name  string
		swap  int
		check bool
		want  int
	}{
		{"match", -1, true, 0},
		{"mismatch", 3, true, 2},
		{"mismatch unchecked", 3, false, 0},
	}

	for _, tc := range testCases {
		cfg := monitor.DefaultConfig()
		cfg.CheckPattern = tc.check
		cfg.Quiet = true
		var out bytes.Buffer
		if got := decodeFile(cfg, writeCapture(t, tc.swap), &out); got != tc.want {
			t.Errorf("%s: expected exit code %d, got %d\n%s", tc.name, tc.want, got, out.String())
		}
	}
}

func TestDecodeFileMissing(t *testing.T) {
	cfg := monitor.DefaultConfig()
	if got := decodeFile(cfg, filepath.Join(t.TempDir(), "missing.bin"), &bytes.Buffer{}); got != 1 {
		t.Errorf("Expected exit code 1, got %d", got)
	}
}
