package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Host represents a scenebridge host found on the network
type Host struct {
	// Instance is the advertised instance name (e.g., "scenebridge-studio")
	Instance string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the address to connect to, IPv4 preferred
	IP string

	// Port is the WebSocket port (typically 8765)
	Port int

	// Version is the server version from the TXT record, if advertised
	Version string

	// Metadata contains all mDNS TXT record data
	// Common fields: "version=1.2.0", "path=/"
	Metadata map[string]string

	// DiscoveredAt is when the host was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the host
func (h *Host) String() string {
	return fmt.Sprintf("scenebridge %s (%s) at %s", h.Instance, h.Hostname, net.JoinHostPort(h.IP, strconv.Itoa(h.Port)))
}

// URL returns the WebSocket URL a client dials
func (h *Host) URL() string {
	path := h.GetMetadata("path")
	if path == "" {
		path = "/"
	}
	return "ws://" + net.JoinHostPort(h.IP, strconv.Itoa(h.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (h *Host) GetMetadata(key string) string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}
