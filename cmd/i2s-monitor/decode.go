package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"i2sframe/host/monitor"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <capture_file>",
	Short: "Decode a captured report stream",
	Long: `Decode raw bytes previously captured from the report UART, for example
with "cat /dev/ttyUSB0 > capture.bin".`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			exitCode = 1
			return
		}
		exitCode = decodeFile(cfg, args[0], os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

// decodeFile prints the reports in a capture file and returns the process
// exit code
func decodeFile(cfg *monitor.Config, path string, out io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Failed to open capture", "path", path, "error", err)
		return 1
	}
	defer f.Close()

	m := monitor.New(cfg, out)
	if err := m.Run(context.Background(), f); err != nil {
		slog.Error("Decode failed", "error", err)
		return 1
	}
	m.Summary()
	return mismatchCode(cfg, m)
}
