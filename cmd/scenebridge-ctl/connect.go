package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/client"
	"github.com/muurk/scenebridge/internal/config"
	"github.com/muurk/scenebridge/internal/discovery"
	"github.com/muurk/scenebridge/internal/ui"
)

// connectTips are shown when the host cannot be reached.
var connectTips = []string{
	"Check that scenebridge-server serve is running",
	"Verify the address with --url or try --discover",
	"A second controller waits until the first one disconnects",
	"Run with --log-level debug for connection details",
}

// resolveURL picks the host address: --url, then mDNS, then the config file.
func resolveURL(ctx context.Context, cfg *config.Config) (string, error) {
	if hostURL != "" {
		return hostURL, nil
	}

	if discover {
		scanCtx, cancel := context.WithTimeout(ctx, cfg.Discovery.ScanTimeout.Std())
		defer cancel()

		hosts, err := discovery.NewScanner().ScanForHosts(scanCtx)
		if err != nil {
			return "", fmt.Errorf("discovery failed: %w", err)
		}
		switch len(hosts) {
		case 0:
			return "", fmt.Errorf("no hosts found. Use --url to specify the address manually")
		case 1:
			return hosts[0].URL(), nil
		default:
			return "", fmt.Errorf("%d hosts found (%s, ...). Use --url to pick one", len(hosts), hosts[0].URL())
		}
	}

	return cfg.Client.URL, nil
}

// newClient builds a facade for the resolved host. It does not connect; the
// first send does.
func newClient(ctx context.Context) (*client.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	url, err := resolveURL(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{
		client.WithDialer(&websocket.Dialer{HandshakeTimeout: cfg.Client.DialTimeout.Std()}),
	}
	camera := cfg.Server.Camera
	if cameraName != "" {
		camera = cameraName
	}
	if camera != "" {
		opts = append(opts, client.WithCamera(camera))
	}
	return client.New(url, opts...), nil
}

// sendOp runs one fire-and-forget operation and prints its result box.
func sendOp(cmd *cobra.Command, title string, details []ui.Param, op func(ctx context.Context, c *client.Client) error) error {
	printer := ui.NewPrinter(os.Stdout)

	c, err := newClient(cmd.Context())
	if err != nil {
		printer.PrintError(title, err, connectTips)
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := op(ctx, c); err != nil {
		printer.PrintError(title, err, connectTips)
		return err
	}

	details = append([]ui.Param{{Key: "Host", Value: c.URL()}}, details...)
	printer.PrintSuccess(title, details...)
	return nil
}

// parseFloats converts every argument to a float64.
func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		out[i] = f
	}
	return out, nil
}

// formatFloats renders numbers the way they are typed on the command line.
func formatFloats(values ...float64) string {
	s := ""
	for i, v := range values {
		if i > 0 {
			s += ", "
		}
		s += strconv.FormatFloat(v, 'g', -1, 64)
	}
	return s
}
