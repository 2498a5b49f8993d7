// Package version reports which scenebridge build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Version and Commit are stamped at link time:
//
//	go build -ldflags="-X github.com/muurk/scenebridge/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/scenebridge/internal/version.Commit=abc1234"
//
// Unstamped builds fall back to the VCS data the Go toolchain embeds.
var (
	Version = ""
	Commit  = ""
)

const shortHash = 7

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	Dirty     bool
	GoVersion string
	Platform  string
}

var current = sync.OnceValue(func() Info {
	var settings []debug.BuildSetting
	goVersion := runtime.Version()
	if bi, ok := debug.ReadBuildInfo(); ok {
		settings = bi.Settings
		goVersion = bi.GoVersion
	}
	return resolve(Version, Commit, settings, goVersion)
})

// Get returns the build information, resolved once per process.
func Get() Info {
	return current()
}

// resolve merges the link-time values with the embedded VCS settings.
// Stamped values always win.
func resolve(version, commit string, settings []debug.BuildSetting, goVersion string) Info {
	info := Info{
		Version:   version,
		Commit:    commit,
		GoVersion: goVersion,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	var revision, stamp string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			stamp = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}

	if info.Commit == "" && revision != "" {
		info.Commit = revision
		if len(info.Commit) > shortHash {
			info.Commit = info.Commit[:shortHash]
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}

	if info.Version == "" {
		info.Version = "dev"
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			info.Version += "-" + t.UTC().Format("20060102")
		}
	}
	return info
}

// String renders the version line printed by the version commands.
func (i Info) String() string {
	commit := i.Commit
	if i.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s, %s, %s)", i.Version, commit, i.GoVersion, i.Platform)
}

// Line prefixes String with the program name.
func (i Info) Line(program string) string {
	return program + " " + i.String()
}
