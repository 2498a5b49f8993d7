package discovery

import "testing"

func TestHost_String(t *testing.T) {
	host := &Host{
		Instance: "scenebridge-studio",
		Hostname: "studio.local.",
		IP:       "192.168.4.16",
		Port:     8765,
	}

	expected := "scenebridge scenebridge-studio (studio.local.) at 192.168.4.16:8765"
	if host.String() != expected {
		t.Errorf("Host.String() = %v, want %v", host.String(), expected)
	}
}

func TestHost_URL(t *testing.T) {
	tests := []struct {
		name     string
		host     *Host
		expected string
	}{
		{
			name:     "default path",
			host:     &Host{IP: "192.168.4.16", Port: 8765},
			expected: "ws://192.168.4.16:8765/",
		},
		{
			name:     "advertised path",
			host:     &Host{IP: "10.0.0.5", Port: 9000, Metadata: map[string]string{"path": "/ws"}},
			expected: "ws://10.0.0.5:9000/ws",
		},
		{
			name:     "IPv6 is bracketed",
			host:     &Host{IP: "fe80::1", Port: 8765},
			expected: "ws://[fe80::1]:8765/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.host.URL(); got != tt.expected {
				t.Errorf("Host.URL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHost_GetMetadata(t *testing.T) {
	host := &Host{Metadata: map[string]string{"version": "1.2.0"}}
	if got := host.GetMetadata("version"); got != "1.2.0" {
		t.Errorf("GetMetadata(version) = %q", got)
	}
	if got := host.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}

	var empty Host
	if got := empty.GetMetadata("version"); got != "" {
		t.Errorf("GetMetadata on nil map = %q, want empty", got)
	}
}
