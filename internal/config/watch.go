package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/logging"
)

// DefaultWatchDebounce collapses the burst of events an editor produces when
// it saves a file.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch calls fn with the freshly loaded configuration every time the file at
// path changes. It watches the parent directory so atomic renames and
// recreated files are seen. A file that fails to load or validate is logged
// and skipped; fn keeps the last good configuration. Watch blocks until ctx
// is cancelled.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	return watch(ctx, path, DefaultWatchDebounce, fn)
}

func watch(ctx context.Context, path string, debounce time.Duration, fn func(*Config)) error {
	path, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	logging.Debug("Watching config file", zap.String("path", path))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Config watcher error", zap.Error(err))

		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logging.Warn("Ignoring config change", zap.String("path", path), zap.Error(err))
				continue
			}
			logging.Info("Config reloaded", zap.String("path", path))
			fn(cfg)
		}
	}
}
