package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/config"
	"github.com/muurk/scenebridge/internal/ui"
)

var forceOverwrite bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file",
	Long: `Write the default configuration to the config file location so it can be
edited. An existing file is only replaced after confirmation, or with --force.`,
	Example: `  # Write to the default location
  scenebridge-server init-config

  # Write somewhere else
  scenebridge-server init-config --config ./scenebridge.yaml`,
	RunE: runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&forceOverwrite, "force", false, "Replace an existing file without asking")
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path, err := config.ResolvePath(configPath)
	if err != nil {
		return err
	}

	force := forceOverwrite
	if _, err := os.Stat(path); err == nil && !force {
		if !ui.IsTerminal(os.Stdin) {
			return fmt.Errorf("config file already exists: %s (use --force to replace it)", path)
		}
		if !ui.ConfirmOverwrite(os.Stdin, os.Stdout, path) {
			return nil
		}
		force = true
	}

	written, err := config.CreateDefault(path, force)
	if err != nil {
		return err
	}

	ui.NewPrinter(os.Stdout).PrintSuccess("Config written", ui.Param{Key: "Path", Value: written})
	return nil
}
