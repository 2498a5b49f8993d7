// Scenebridge-server is the host side of scenebridge.
//
// It listens for one WebSocket controller at a time, queues the JSON commands
// it sends and applies them to an in-memory scene from a single host loop.
// Pongs and object lists are written back on the same connection.
//
// Usage:
//
//	scenebridge-server serve [flags]
//
// See 'scenebridge-server serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath is shared by every subcommand; empty selects the default location.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "scenebridge-server",
	Short: "scenebridge WebSocket host",
	Long: `The host side of scenebridge: a single-client WebSocket listener that feeds
JSON scene commands into a host loop.

The listener runs on a background goroutine; commands are applied on the
host loop in the order they arrived. Use 'scenebridge-ctl' to send commands.`,
	Version: version.Get().Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config dir)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().Line("scenebridge-server"))
	},
}
