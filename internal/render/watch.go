package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 100 * time.Millisecond

// Watch re-parses the templates whenever a file in the on-disk template
// directory changes, until ctx is cancelled. It is a no-op error for a
// renderer built from the embedded templates.
func (rn *Renderer) Watch(ctx context.Context) error {
	if rn.opts.Dir == "" {
		return fmt.Errorf("watch: renderer uses embedded templates")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(rn.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", rn.opts.Dir, err)
	}
	slog.Info("watching templates", "dir", rn.opts.Dir)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".html" || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			timer.Reset(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("template watcher", "error", err)
		case <-timer.C:
			if err := rn.Reload(); err != nil {
				slog.Error("template reload failed", "error", err)
				continue
			}
			slog.Info("templates reloaded")
		}
	}
}
