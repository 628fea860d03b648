package table

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// ErrEmptyTable is reported when a reload yields no units, which is what a
// reader sees between an editor truncating the file and writing it back.
var ErrEmptyTable = errors.New("table: reload produced no units")

// Watch monitors path and calls onChange with a freshly built graph each time
// the file is written. It runs until ctx is cancelled.
//
// If a rebuild fails, the error is logged and onChange is not called, so the
// caller keeps serving the previous graph. onError, when non-nil, is told
// about the failure.
func Watch(ctx context.Context, path string, opts unitgraph.Options, onChange func(*unitgraph.Graph), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("table: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves show up as Create (or Rename/Remove of the old
			// inode). Re-adding keeps the watch on the new file.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				_ = watcher.Add(path)
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			g, err := Load(path, opts)
			if err == nil && g.Len() == 0 {
				err = ErrEmptyTable
			}
			if err != nil {
				slog.Error("table: reload failed, keeping previous table",
					"path", path, "err", err)
				if onError != nil {
					onError(err)
				}
				continue
			}

			slog.Info("table: reloaded",
				"path", path, "units", g.Len(), "edges", g.EdgeCount())
			onChange(g)

			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("table: watcher error", "err", err)
		}
	}
}
