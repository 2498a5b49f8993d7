package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type scenebridge hosts advertise
	ServiceType = "_scenebridge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for host discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry carries no port
	DefaultPort = 8765
)

// Scanner handles mDNS host discovery
type Scanner struct {
	// Timeout is the maximum time to wait for host discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForHosts collects every host that answers before the timeout or ctx
// ends.
func (s *Scanner) ScanForHosts(ctx context.Context) ([]*Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu    sync.Mutex
		hosts = make([]*Host, 0)
		seen  = make(map[string]bool)
	)

	err := s.browse(ctx, func(host *Host) bool {
		mu.Lock()
		defer mu.Unlock()
		if !seen[host.Instance] {
			seen[host.Instance] = true
			hosts = append(hosts, host)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return hosts, nil
}

// WaitForHost returns the first host with the given instance name, or the
// first host of any name when instance is empty.
func (s *Scanner) WaitForHost(ctx context.Context, instance string) (*Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	found := make(chan *Host, 1)
	err := s.browse(ctx, func(host *Host) bool {
		if instance != "" && host.Instance != instance {
			return true
		}
		select {
		case found <- host:
		default:
		}
		cancel()
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case host := <-found:
		return host, nil
	default:
		if instance == "" {
			return nil, fmt.Errorf("no scenebridge host found within %s", s.Timeout)
		}
		return nil, fmt.Errorf("host %q not found within %s", instance, s.Timeout)
	}
}

// browse feeds parsed entries to fn until ctx ends or fn returns false. It
// returns after the consumer goroutine has exited.
func (s *Scanner) browse(ctx context.Context, fn func(*Host) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if host := s.parseServiceEntry(entry); host != nil && !fn(host) {
					return
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-done
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Host
// Returns nil if the entry has no instance name or address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Host {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Host{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Version:      metadata["version"],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForHosts is a convenience function to scan with a custom timeout
func ScanForHosts(timeout time.Duration) ([]*Host, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForHosts(context.Background())
}
