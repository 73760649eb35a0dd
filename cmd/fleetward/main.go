package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	selfAddress string
	dataDir     string
	staticPeers []string
	localOnly   bool
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "fleetward",
	Short: "Fleet-aware lifecycle scheduler daemon",
	Long: `fleetward runs one member of a fleet of long-lived nodes and decides,
deterministically and without coordination traffic, when this node should
voluntarily restart and whether it should shut down early after losing
connectivity.

Examples:
  # Run with a config file
  fleetward run --config /etc/fleetward/config.toml

  # Run against a static roster
  fleetward run --self-address node1:8000 --peers node1:8000,node2:8000,node3:8000`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lifecycle scheduler node",
	RunE:  runNode,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML config file")
	runCmd.Flags().StringVar(&selfAddress, "self-address", "", "This node's address in the fleet roster")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persisted state")
	runCmd.Flags().StringSliceVar(&staticPeers, "peers", nil, "Static fleet roster (comma-separated addresses)")
	runCmd.Flags().BoolVar(&localOnly, "local-only", false, "Local test mode: suppress restart schedule and watchdog")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
