package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch ingests files dropped into dir until the context is cancelled.
// Each created or written file is handed to handle once its event arrives;
// handler errors are logged, not fatal, so one bad file never stops the
// watcher.
func Watch(ctx context.Context, dir string, logger *slog.Logger, handle func(path string) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching directory", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if skipWatchedFile(event.Name) {
				continue
			}
			logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			if err := handle(event.Name); err != nil {
				logger.Error("ingest failed", "path", event.Name, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// skipWatchedFile filters editor temp files and hidden files.
func skipWatchedFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
