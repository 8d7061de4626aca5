package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/kvfs/internal/logger"
)

// watchDebounce coalesces the burst of filesystem events most editors
// produce for a single save into one reload.
const watchDebounce = 250 * time.Millisecond

// Watch watches the configuration file at path and invokes onChange with
// the freshly loaded configuration whenever the file is rewritten.
//
// The parent directory is watched rather than the file itself, so atomic
// saves (write to a temp file, rename over the target) are picked up.
//
// A rewrite that fails to load or validate is logged and skipped; the
// previous configuration stays in effect. Watch blocks until ctx is
// cancelled or the watcher fails.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	timer := time.NewTimer(watchDebounce)
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

			// Only events for our file matter; the directory watch sees
			// every sibling too.
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			timer.Reset(watchDebounce)

		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config reload failed, keeping previous configuration",
					logger.Path(path), logger.Err(err))
				continue
			}

			logger.Info("configuration reloaded", logger.Path(path))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", logger.Err(err))
		}
	}
}
