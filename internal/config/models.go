package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the config file format version.
const CurrentVersion = 1

// Config represents the entire configuration file.
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Poll      PollConfig      `yaml:"poll"`
	Logging   LoggingConfig   `yaml:"logging"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Client    ClientConfig    `yaml:"client"`
}

// ServerConfig configures the host listener.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	HandshakeMode   string   `yaml:"handshake_mode"`    // "buffered" or "single"
	MaxPayloadBytes uint64   `yaml:"max_payload_bytes"` // per-frame bound
	AcceptBackoff   Duration `yaml:"accept_backoff"`
	HandshakeWait   Duration `yaml:"handshake_wait"` // bound on reading the upgrade request
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CaptureDir      string   `yaml:"capture_dir,omitempty"` // empty = capture disabled
	Camera          string   `yaml:"camera"`                // object focus_on rotates
}

// PollConfig configures the host loop delays.
type PollConfig struct {
	BusyDelay Duration `yaml:"busy_delay"`
	IdleDelay Duration `yaml:"idle_delay"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error; empty disables logging
}

// DiscoveryConfig configures mDNS advertising and scanning.
type DiscoveryConfig struct {
	Advertise   bool     `yaml:"advertise"`
	Instance    string   `yaml:"instance,omitempty"` // empty = scenebridge-<hostname>
	ScanTimeout Duration `yaml:"scan_timeout"`
}

// ClientConfig configures scenebridge-ctl.
type ClientConfig struct {
	URL         string   `yaml:"url"`
	DialTimeout Duration `yaml:"dial_timeout"`
}

// Duration is a time.Duration written as a string such as "50ms".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}
