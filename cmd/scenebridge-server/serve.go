package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/bridge"
	"github.com/muurk/scenebridge/internal/config"
	"github.com/muurk/scenebridge/internal/discovery"
	"github.com/muurk/scenebridge/internal/dispatch"
	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/scene"
	"github.com/muurk/scenebridge/internal/server"
	"github.com/muurk/scenebridge/internal/ui"
	"github.com/muurk/scenebridge/internal/version"
)

// Serve command flags
var (
	host          string
	port          int
	logLevel      string
	captureDir    string
	handshakeMode string
	camera        string
	advertise     bool
	instance      string
	showTUI       bool
	watchConfig   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebSocket host",
	Long: `Start the scenebridge host and accept controller connections.

Only one controller is served at a time; a second one waits until the first
disconnects. Settings come from the config file and are overridden by flags.

To record every message for later replay, use --capture-dir. With --watch the
config file is re-read when it changes and the log level and poll delays are
applied without restarting the listener.`,
	Example: `  # Listen on the default 127.0.0.1:8765
  scenebridge-server serve

  # Listen on all interfaces and advertise over mDNS
  scenebridge-server serve --host 0.0.0.0 --advertise

  # Record traffic and show the live monitor
  scenebridge-server serve --capture-dir ./captures --tui

  # Read the upgrade request in one segment, as older controllers expect
  scenebridge-server serve --handshake single --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", server.DefaultHost, "Interface to listen on")
	serveCmd.Flags().IntVar(&port, "port", server.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory to write message captures (disabled if not specified)")
	serveCmd.Flags().StringVar(&handshakeMode, "handshake", "buffered", "Handshake read mode (buffered, single)")
	serveCmd.Flags().StringVar(&camera, "camera", scene.DefaultCameraName, "Object rotated by focus_on")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the host over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: scenebridge-<hostname>)")
	serveCmd.Flags().BoolVar(&showTUI, "tui", false, "Show the live monitor instead of log output")
	serveCmd.Flags().BoolVar(&watchConfig, "watch", false, "Reload the config file when it changes")
}

// applyFlags copies the flags the user set over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = host
	}
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("capture-dir") {
		cfg.Server.CaptureDir = captureDir
	}
	if flags.Changed("handshake") {
		cfg.Server.HandshakeMode = handshakeMode
	}
	if flags.Changed("camera") {
		cfg.Server.Camera = camera
	}
	if flags.Changed("advertise") {
		cfg.Discovery.Advertise = advertise
	}
	if flags.Changed("instance") {
		cfg.Discovery.Instance = instance
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if cfg.Server.CaptureDir != "" {
		info, err := os.Stat(cfg.Server.CaptureDir)
		if err != nil {
			return fmt.Errorf("cannot access capture directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("capture path is not a directory: %s", cfg.Server.CaptureDir)
		}
	}

	// The monitor owns the terminal, so log output would corrupt it
	tui := showTUI && ui.IsTerminal(os.Stdout)
	if tui {
		logging.SetLogger(zap.NewNop())
	} else if err := logging.Initialize(cfg.Logging.Level); err != nil {
		return err
	}
	defer logging.Sync()

	bridgeConfig, err := cfg.Bridge()
	if err != nil {
		return err
	}
	b := bridge.New(bridgeConfig, scene.DefaultScene())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var program *tea.Program
	if tui {
		program = tea.NewProgram(ui.NewMonitor(ui.MonitorConfig{
			Title:   "scenebridge host",
			Address: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Stats: func() ui.MonitorStats {
				return ui.MonitorStats(b.Stats())
			},
		}), tea.WithContext(ctx))

		b.Server().OnStateChange(func(change server.StateChange) {
			program.Send(ui.StateMsg{State: change.To.String(), Remote: change.RemoteAddr, Session: change.Session})
		})
		b.OnOutcome(func(o dispatch.Outcome) {
			program.Send(ui.OutcomeMsg{OK: o.OK, Text: o.String(), At: time.Now()})
		})
	}

	// The hooks block until the monitor reads them, so it runs before Start
	if program != nil {
		go func() {
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				logging.Error("Monitor failed", zap.Error(err))
			}
			// Quitting the monitor stops the host
			stop()
		}()
		defer func() {
			program.Quit()
			program.Wait()
		}()
	}

	if err := b.Start(); err != nil {
		return fmt.Errorf("failed to start host: %w", err)
	}
	addr := b.Server().Addr()
	logging.Info("Host ready",
		zap.String("version", version.Get().String()),
		zap.String("address", addr.String()),
		zap.String("handshake", cfg.Server.HandshakeMode),
	)

	if cfg.Discovery.Advertise {
		tcpAddr, _ := addr.(*net.TCPAddr)
		advertisePort := cfg.Server.Port
		if tcpAddr != nil {
			advertisePort = tcpAddr.Port
		}
		adv, err := discovery.Advertise(cfg.Discovery.Instance, advertisePort, discovery.TXTRecords(version.Get().Version, "/"))
		if err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	if watchConfig {
		go func() {
			err := config.Watch(ctx, configPath, func(next *config.Config) {
				if !tui {
					logging.SetLevel(next.Logging.Level)
				}
				b.SetPollDelays(next.Poll.BusyDelay.Std(), next.Poll.IdleDelay.Std())
				logging.Debug("Applied config",
					zap.String("log_level", logging.Level()),
					zap.Duration("busy_delay", next.Poll.BusyDelay.Std()),
					zap.Duration("idle_delay", next.Poll.IdleDelay.Std()),
				)
			})
			if err != nil {
				logging.Warn("Config watch stopped", zap.Error(err))
			}
		}()
	}

	runErr := bridge.RunScheduler(ctx, b.Step)
	stopErr := b.Stop(cfg.ShutdownTimeout())

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if stopErr != nil {
		return fmt.Errorf("shutdown: %w", stopErr)
	}

	stats := b.Stats()
	logging.Info("Host stopped",
		zap.Uint64("received", stats.Received),
		zap.Uint64("applied", stats.Applied),
		zap.Uint64("failed", stats.Failed),
	)
	return nil
}
