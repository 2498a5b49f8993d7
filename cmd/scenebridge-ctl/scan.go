package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/discovery"
	"github.com/muurk/scenebridge/internal/ui"
)

var scanTimeout time.Duration

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to listen for hosts")
}

// scanCmd discovers hosts on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find scenebridge hosts on the network",
	Long: `Browse for hosts advertising ` + discovery.ServiceType + ` over mDNS.

Hosts only advertise when started with --advertise (or discovery.advertise
in the config file).`,
	Example: `  # Listen for 5 seconds (default)
  scenebridge-ctl scan

  # Quick scan
  scenebridge-ctl scan --scan-timeout 2s`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	printer := ui.NewPrinter(os.Stdout)
	printer.PrintHeader("Host scan", "scenebridge-ctl scan",
		ui.Param{Key: "Service", Value: discovery.ServiceType},
		ui.Param{Key: "Timeout", Value: scanTimeout.String()},
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	hosts, err := discovery.NewScanner().ScanForHosts(ctx)
	if err != nil {
		printer.PrintError("Scan failed", err, nil)
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(hosts) == 0 {
		printer.PrintWarning("No hosts found",
			ui.Param{Key: "Hint", Value: "start the host with --advertise"},
		)
		return nil
	}

	printer.PrintSuccess("Found " + strconv.Itoa(len(hosts)) + " host(s)")
	printer.Newline()

	for i, host := range hosts {
		details := []ui.Param{
			{Key: "URL", Value: host.URL()},
			{Key: "Hostname", Value: host.Hostname},
		}
		if v := host.GetMetadata("version"); v != "" {
			details = append(details, ui.Param{Key: "Version", Value: v})
		}
		printer.Println(ui.HeaderTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, host.Instance)))
		for _, d := range details {
			printer.Println(ui.ResultKeyStyle.Render("   "+d.Key+":") + " " + ui.ResultValueStyle.Render(d.Value))
		}
		printer.Newline()
	}

	printer.Println(ui.StepNoteStyle.Render("  Use 'scenebridge-ctl --url <url> ping' to check a host"))
	return nil
}
