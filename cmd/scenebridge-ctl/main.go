// Scenebridge-ctl is the controller side of scenebridge.
//
// It connects to a running scenebridge-server and sends scene commands:
// property sets, object creation, GLB import, camera focus, object listing
// and ping. It can also discover hosts over mDNS, run the demonstration
// sequence, probe a host over a raw socket, and replay or summarise a capture
// recorded by the server.
//
// Usage:
//
//	scenebridge-ctl [command] [flags]
//
// See 'scenebridge-ctl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	hostURL    string
	discover   bool
	timeout    time.Duration
	cameraName string
	verbose    bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "scenebridge-ctl",
	Short: "scenebridge controller",
	Long: `Send scene commands to a running scenebridge host.

Mutating commands are fire-and-forget: the host applies them on its next
tick and does not answer. Only 'ping' and 'list' wait for a reply.

The host address comes from --url, from mDNS discovery with --discover, or
from the client section of the config file, in that order.`,
	Version:      version.Get().Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config dir)")
	rootCmd.PersistentFlags().StringVar(&hostURL, "url", "", "Host URL, e.g. ws://127.0.0.1:8765")
	rootCmd.PersistentFlags().BoolVar(&discover, "discover", false, "Find the host over mDNS")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "Time allowed per command")
	rootCmd.PersistentFlags().StringVar(&cameraName, "camera", "", "Camera object name (default: Camera)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show the JSON exchanged with the host")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().Line("scenebridge-ctl"))
	},
}
