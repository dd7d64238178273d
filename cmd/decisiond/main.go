// Decisiond is an MCP server for structured decision analysis and
// sequential thinking, served over stdio.
//
// Configuration is loaded from ~/.config/decisiond/config.yaml and
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start the server with defaults
//	decisiond
//
//	# Use an explicit config file and in-memory sessions
//	decisiond --config ./config.yaml --store memory
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var (
	configPath   string
	storeBackend string
	metricsAddr  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "decisiond",
	Short: "MCP server for decision analysis and sequential thinking",
	Long: `decisiond serves structured decision sessions over the MCP stdio
transport: weighted criteria, option scoring, confidence-gated
recommendations, bias and logic checks, and free-form thinking trails.

All protocol traffic uses stdout; logs go to stderr.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/decisiond/config.yaml)")
	rootCmd.Flags().StringVar(&storeBackend, "store", "", "session store backend: memory or sqlite (overrides config)")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus scrape address, e.g. :9464 (overrides config)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("decisiond\n")
		cmd.Printf("Version:    %s\n", version)
		cmd.Printf("Commit:     %s\n", gitCommit)
		cmd.Printf("Build Date: %s\n", buildDate)
	},
}
