// Package config loads, validates and saves the scenebridge configuration file.
//
// The file is YAML and follows OS-specific conventions for its location:
//   - Linux: $XDG_CONFIG_HOME/scenebridge/config.yaml or $HOME/.config/scenebridge/config.yaml
//   - macOS: $HOME/.config/scenebridge/config.yaml
//   - Windows: %LOCALAPPDATA%\scenebridge\config.yaml
//
// A missing file yields Default(). Fields left out of a file take their
// default values, so a file only needs the settings it changes:
//
//	version: 1
//	server:
//	  port: 9000
//	poll:
//	  idle_delay: 100ms
//
// Validate reports every problem in one joined error.
//
// # Live Reload
//
// Watch re-reads the file when it changes and hands the new configuration to
// a callback. scenebridge-server uses it to adjust the log level and the poll
// delays without restarting the listener.
package config
