package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/thisisjab/docq/config"
	"github.com/thisisjab/docq/querier"
)

// runWatch runs the query once, then re-runs it every time the store file
// changes, until the context is cancelled.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer, expr string) error {
	pred, err := querier.Compile(expr)
	if err != nil {
		return err
	}

	if err := executeQuery(cfg, stdout, pred); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	// The store replaces its file via rename on every write, which swaps the
	// inode out from under a direct file watch. Watch the parent directory
	// and filter events by name instead.
	path, err := filepath.Abs(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("cannot resolve store path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(path), err)
	}

	logger.Info("watching store file.", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				logger.Debug("fsnotify watcher channel is closed.")
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			logger.Debug("store file changed. re-running query.", "op", event.Op.String())
			if err := executeQuery(cfg, stdout, pred); err != nil {
				// The file may be mid-replace; report and keep watching.
				logger.Error("query failed.", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error.", "error", err)
		}
	}
}
