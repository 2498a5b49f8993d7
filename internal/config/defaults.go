package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/muurk/scenebridge/internal/bridge"
	"github.com/muurk/scenebridge/internal/client"
	"github.com/muurk/scenebridge/internal/discovery"
	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/protocol"
	"github.com/muurk/scenebridge/internal/scene"
	"github.com/muurk/scenebridge/internal/server"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			Host:            server.DefaultHost,
			Port:            server.DefaultPort,
			HandshakeMode:   string(protocol.HandshakeBuffered),
			MaxPayloadBytes: protocol.DefaultMaxPayloadSize,
			AcceptBackoff:   Duration(server.DefaultAcceptBackoff),
			HandshakeWait:   Duration(server.DefaultHandshakeWait),
			ShutdownTimeout: Duration(server.DefaultStopTimeout),
			Camera:          scene.DefaultCameraName,
		},
		Poll: PollConfig{
			BusyDelay: Duration(bridge.DefaultBusyDelay),
			IdleDelay: Duration(bridge.DefaultIdleDelay),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Discovery: DiscoveryConfig{
			ScanTimeout: Duration(discovery.DefaultScanTimeout),
		},
		Client: ClientConfig{
			URL:         client.DefaultURL,
			DialTimeout: Duration(client.DefaultDialTimeout),
		},
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := protocol.ParseHandshakeMode(c.Server.HandshakeMode); err != nil {
		errs = append(errs, fmt.Errorf("server.handshake_mode: %w", err))
	}
	if c.Server.AcceptBackoff < 0 || c.Server.HandshakeWait < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server durations must not be negative"))
	}
	if c.Poll.BusyDelay < 0 || c.Poll.IdleDelay < 0 {
		errs = append(errs, errors.New("poll delays must not be negative"))
	}
	if c.Poll.BusyDelay > 0 && c.Poll.IdleDelay > 0 && c.Poll.BusyDelay > c.Poll.IdleDelay {
		errs = append(errs, fmt.Errorf("poll.busy_delay %s is longer than poll.idle_delay %s", c.Poll.BusyDelay, c.Poll.IdleDelay))
	}
	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Bridge converts the server and poll sections to a bridge configuration.
func (c *Config) Bridge() (bridge.Config, error) {
	mode, err := protocol.ParseHandshakeMode(c.Server.HandshakeMode)
	if err != nil {
		return bridge.Config{}, err
	}

	return bridge.Config{
		Server: server.Config{
			Host:          c.Server.Host,
			Port:          c.Server.Port,
			HandshakeMode: mode,
			MaxPayload:    c.Server.MaxPayloadBytes,
			AcceptBackoff: c.Server.AcceptBackoff.Std(),
			HandshakeWait: c.Server.HandshakeWait.Std(),
			CaptureDir:    c.Server.CaptureDir,
		},
		BusyDelay: c.Poll.BusyDelay.Std(),
		IdleDelay: c.Poll.IdleDelay.Std(),
		Camera:    c.Server.Camera,
	}, nil
}

// ShutdownTimeout returns the bounded wait used when stopping the server.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeout <= 0 {
		return server.DefaultStopTimeout
	}
	return c.Server.ShutdownTimeout.Std()
}

// fillDefaults replaces zero values left by a partial file.
func (c *Config) fillDefaults() {
	d := Default()

	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.HandshakeMode == "" {
		c.Server.HandshakeMode = d.Server.HandshakeMode
	}
	if c.Server.MaxPayloadBytes == 0 {
		c.Server.MaxPayloadBytes = d.Server.MaxPayloadBytes
	}
	if c.Server.AcceptBackoff == 0 {
		c.Server.AcceptBackoff = d.Server.AcceptBackoff
	}
	if c.Server.HandshakeWait == 0 {
		c.Server.HandshakeWait = d.Server.HandshakeWait
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.Camera == "" {
		c.Server.Camera = d.Server.Camera
	}
	if c.Poll.BusyDelay == 0 {
		c.Poll.BusyDelay = d.Poll.BusyDelay
	}
	if c.Poll.IdleDelay == 0 {
		c.Poll.IdleDelay = d.Poll.IdleDelay
	}
	if c.Discovery.ScanTimeout == 0 {
		c.Discovery.ScanTimeout = d.Discovery.ScanTimeout
	}
	if c.Client.URL == "" {
		c.Client.URL = d.Client.URL
	}
	if c.Client.DialTimeout == 0 {
		c.Client.DialTimeout = d.Client.DialTimeout
	}
}
