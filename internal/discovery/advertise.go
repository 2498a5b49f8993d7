package discovery

import (
	"fmt"
	"os"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/logging"
)

// Advertiser publishes a scenebridge host over mDNS until Shutdown.
type Advertiser struct {
	server   *zeroconf.Server
	instance string
}

// DefaultInstance returns "scenebridge-<hostname>".
func DefaultInstance() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "scenebridge"
	}
	name = strings.TrimSuffix(strings.Split(name, ".")[0], ".local")
	return "scenebridge-" + name
}

// TXTRecords builds the TXT entries a host advertises.
func TXTRecords(version, path string) []string {
	if path == "" {
		path = "/"
	}
	txt := []string{"path=" + path}
	if version != "" {
		txt = append(txt, "version="+version)
	}
	return txt
}

// Advertise registers instance for ServiceType on port.
func Advertise(instance string, port int, txt []string) (*Advertiser, error) {
	if instance == "" {
		instance = DefaultInstance()
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising over mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertiser{server: server, instance: instance}, nil
}

// Instance returns the advertised instance name.
func (a *Advertiser) Instance() string {
	return a.instance
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Debug("mDNS advertisement withdrawn", zap.String("instance", a.instance))
}
