package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"i2sframe/host/monitor"
	"i2sframe/host/serial"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Read reports from a serial port",
	Long: `Open the firmware's report UART and print every report until interrupted
or until --duration elapses.

Examples:
  # Watch the default port
  i2s-monitor watch

  # Check a 10 second capture against the test pattern
  i2s-monitor watch --device /dev/ttyACM0 --duration 10s --check-pattern`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("device", "", "Serial device path (overrides config)")
	watchCmd.Flags().Int("baud", 0, "Baud rate (overrides config)")
	watchCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
}

func runWatch(cmd *cobra.Command) int {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	if device, _ := cmd.Flags().GetString("device"); device != "" {
		cfg.Device = device
	}
	if baud, _ := cmd.Flags().GetInt("baud"); baud != 0 {
		cfg.Baud = baud
	}
	duration, err := cmd.Flags().GetDuration("duration")
	if err != nil {
		slog.Error("Failed to get duration flag", "error", err)
		return 1
	}

	port, err := serial.Open(&serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeoutMS,
	})
	if err != nil {
		slog.Error("Failed to open serial port", "device", cfg.Device, "error", err)
		return 1
	}
	defer port.Close()

	slog.Info("Watching", "device", port.Device(), "baud", cfg.Baud)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	m := monitor.New(cfg, os.Stdout)
	start := time.Now()
	if err := m.Run(ctx, port); err != nil {
		slog.Error("Monitor stopped", "error", err)
	}
	slog.Info("Done", "elapsed", time.Since(start).Round(time.Millisecond))
	m.Summary()
	return mismatchCode(cfg, m)
}

// mismatchCode returns 2 when a pattern check was requested and any port
// did not match
func mismatchCode(cfg *monitor.Config, m *monitor.Monitor) int {
	if !cfg.CheckPattern {
		return 0
	}
	for _, res := range m.Check() {
		if !res.Match {
			return 2
		}
	}
	return 0
}
