package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-03-04T10:11:12Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name        string
		version     string
		commit      string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
		wantDirty   bool
	}{
		{"stamped", "v1.2.3", "abc1234", nil, "v1.2.3", "abc1234", false},
		{"stamped wins over vcs", "v1.2.3", "abc1234", vcs, "v1.2.3", "abc1234", true},
		{"vcs only", "", "", vcs, "dev-20250304", "0123456", true},
		{"nothing", "", "", nil, "dev", "unknown", false},
		{"short revision", "", "", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}, "dev", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.settings, "go1.24.0")
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", got.Commit, tt.wantCommit)
			}
			if got.Dirty != tt.wantDirty {
				t.Errorf("Dirty = %v, want %v", got.Dirty, tt.wantDirty)
			}
		})
	}
}

func TestInfoLine(t *testing.T) {
	i := Info{Version: "v0.3.0", Commit: "abc1234", Dirty: true, GoVersion: "go1.24.0", Platform: "linux/amd64"}

	want := "scenebridge-server v0.3.0 (commit: abc1234-dirty, go1.24.0, linux/amd64)"
	if got := i.Line("scenebridge-server"); got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}

	i.Dirty = false
	if got := i.String(); got != "v0.3.0 (commit: abc1234, go1.24.0, linux/amd64)" {
		t.Errorf("String() = %q", got)
	}
}

func TestGetIsStable(t *testing.T) {
	a, b := Get(), Get()
	if a != b {
		t.Errorf("Get() changed between calls: %+v vs %+v", a, b)
	}
	if a.Version == "" || !strings.Contains(a.Platform, "/") {
		t.Errorf("Get() = %+v", a)
	}
}
