package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func newEntry(instance string) *zeroconf.ServiceEntry {
	return zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
}

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    func() *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "host with IPv4",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("scenebridge-studio")
				e.HostName = "studio.local."
				e.Port = 8765
				e.AddrIPv4 = []net.IP{net.ParseIP("192.168.4.16")}
				e.Text = []string{"path=/", "version=1.2.0"}
				return e
			},
			wantIP:   "192.168.4.16",
			wantPort: 8765,
		},
		{
			name: "custom port",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("scenebridge-lab")
				e.Port = 9000
				e.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.5")}
				return e
			},
			wantIP:   "10.0.0.5",
			wantPort: 9000,
		},
		{
			name: "no port specified defaults to 8765",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("scenebridge-lab")
				e.AddrIPv4 = []net.IP{net.ParseIP("172.16.0.1")}
				return e
			},
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name: "IPv6 only",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("scenebridge-v6")
				e.Port = 8765
				e.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
				return e
			},
			wantIP:   "fe80::1",
			wantPort: 8765,
		},
		{
			name: "both families prefer IPv4",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("scenebridge-dual")
				e.Port = 8765
				e.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.50")}
				e.AddrIPv6 = []net.IP{net.ParseIP("fe80::2")}
				return e
			},
			wantIP:   "192.168.1.50",
			wantPort: 8765,
		},
		{
			name: "no address",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("scenebridge-ghost")
				e.Port = 8765
				return e
			},
			wantNil: true,
		},
		{
			name: "no instance name",
			entry: func() *zeroconf.ServiceEntry {
				e := newEntry("")
				e.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.1")}
				return e
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := tt.entry()
			host := scanner.parseServiceEntry(entry)

			if tt.wantNil {
				if host != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", host)
				}
				return
			}

			if host == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil host")
			}
			if host.Instance != entry.Instance {
				t.Errorf("host.Instance = %v, want %v", host.Instance, entry.Instance)
			}
			if host.IP != tt.wantIP {
				t.Errorf("host.IP = %v, want %v", host.IP, tt.wantIP)
			}
			if host.Port != tt.wantPort {
				t.Errorf("host.Port = %v, want %v", host.Port, tt.wantPort)
			}
			if time.Since(host.DiscoveredAt) > time.Second {
				t.Errorf("host.DiscoveredAt is not recent: %v", host.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := newEntry("scenebridge-studio")
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.4.16")}
	entry.Text = []string{"path=/bridge", "version=1.2.0", "flag"}

	host := scanner.parseServiceEntry(entry)
	if host == nil {
		t.Fatal("parseServiceEntry() = nil, want host")
	}

	expected := map[string]string{
		"path":    "/bridge",
		"version": "1.2.0",
		"flag":    "",
	}
	if len(host.Metadata) != len(expected) {
		t.Errorf("host.Metadata has %d entries, want %d", len(host.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := host.Metadata[key]; !ok || got != want {
			t.Errorf("host.Metadata[%q] = %q (present %v), want %q", key, got, ok, want)
		}
	}
	if host.Version != "1.2.0" {
		t.Errorf("host.Version = %q, want 1.2.0", host.Version)
	}
	if host.URL() != "ws://192.168.4.16:8765/bridge" {
		t.Errorf("host.URL() = %q", host.URL())
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestTXTRecords(t *testing.T) {
	tests := []struct {
		version string
		path    string
		want    []string
	}{
		{"1.2.0", "/", []string{"path=/", "version=1.2.0"}},
		{"", "", []string{"path=/"}},
		{"dev", "/ws", []string{"path=/ws", "version=dev"}},
	}

	for _, tt := range tests {
		got := TXTRecords(tt.version, tt.path)
		if len(got) != len(tt.want) {
			t.Errorf("TXTRecords(%q, %q) = %v, want %v", tt.version, tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("TXTRecords(%q, %q)[%d] = %q, want %q", tt.version, tt.path, i, got[i], tt.want[i])
			}
		}
	}
}

func TestDefaultInstance(t *testing.T) {
	name := DefaultInstance()
	if len(name) < len("scenebridge") || name[:len("scenebridge")] != "scenebridge" {
		t.Errorf("DefaultInstance() = %q, want scenebridge prefix", name)
	}
}

// Live advertise/browse round trips need multicast and are not run here.
