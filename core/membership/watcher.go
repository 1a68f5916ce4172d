package membership

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchFile loads the worker list at path into dir and reloads it whenever
// the file is written or recreated, until ctx is done. A reload that fails to
// parse keeps the previous membership.
func WatchFile(ctx context.Context, path string, dir *Directory, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("membership")

	nodes, err := LoadWorkerFile(path)
	if err != nil {
		return err
	}
	dir.Replace(nodes)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("membership: create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("membership: watch %q: %w", path, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				nodes, err := LoadWorkerFile(path)
				if err != nil {
					logger.Warn("Ignoring invalid worker list", zap.String("path", path), zap.Error(err))
					continue
				}
				dir.Replace(nodes)
				logger.Info("Reloaded worker list", zap.String("path", path), zap.Int("workers", len(nodes)))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Worker list watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
