package style

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce coalesces the burst of events editors produce on save.
const WatchDebounce = 500 * time.Millisecond

// Watch reloads the configuration at path whenever it changes and passes
// each valid result to onChange. Invalid files are logged and skipped, the
// previous configuration stays in effect. Watch blocks until ctx is done.
//
// The parent directory is watched instead of the file so that editors
// replacing the file by rename keep being observed.
func Watch(ctx context.Context, path string, onChange func(*StyleConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("Watching style config", "path", abs)

	debounce := time.NewTimer(WatchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Style watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Style config changed", "op", event.Op.String())
			debounce.Reset(WatchDebounce)

		case <-debounce.C:
			cfg, err := Load(abs)
			if err != nil {
				slog.Error("Style config reload failed", "path", abs, "error", err)
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Style watcher error", "error", err)
		}
	}
}
