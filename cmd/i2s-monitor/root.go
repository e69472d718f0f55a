package main

import (
	"os"

	"github.com/spf13/cobra"

	"i2sframe/host/monitor"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "i2s-monitor",
	Short: "Telemetry monitor for the i2sframe firmware",
	Long: `i2s-monitor reads the report stream the i2sframe firmware writes to its
debug UART and prints received frames, driver logs and statistics.

Commands:
  - watch: read reports live from a serial port
  - decode: decode a captured report stream from a file`,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "JSON monitor configuration file")
	rootCmd.PersistentFlags().Bool("check-pattern", false, "Compare received frames with the test pattern")
	rootCmd.PersistentFlags().Bool("quiet", false, "Do not print individual frames")
}

// exitCode is set by a subcommand that wants a non-zero status. Commands
// return normally so their deferred cleanup runs before the process exits.
var exitCode int

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// loadConfig builds the monitor configuration from the config file and the
// persistent flags. Flags given on the command line win.
func loadConfig(cmd *cobra.Command) (*monitor.Config, error) {
	cfg := monitor.DefaultConfig()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg, err = monitor.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("check-pattern") {
		if cfg.CheckPattern, err = cmd.Flags().GetBool("check-pattern"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("quiet") {
		if cfg.Quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
