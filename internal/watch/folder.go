package watch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mudkip/internal/apperr"
	"github.com/starford/mudkip/internal/document"
	"github.com/starford/mudkip/internal/launch"
)

// FolderWatcher watches a single directory and re-lists its markdown files
// whenever membership may have changed. Unlike the file coordinator it reacts
// to removals and renames, because those change a listing but not an open
// document.
type FolderWatcher struct {
	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	path   string
	emit   func(*document.FolderPayload)
	logger *slog.Logger
}

// NewFolderWatcher creates a stopped folder watcher.
func NewFolderWatcher(emit func(*document.FolderPayload), logger *slog.Logger) *FolderWatcher {
	return &FolderWatcher{emit: emit, logger: logger}
}

// Start begins watching path, replacing any previous watch. Re-starting on
// the path already being watched is a no-op. The path must canonicalize to a
// directory.
func (w *FolderWatcher) Start(path string) error {
	target, ok := launch.Classify(path)
	if !ok || target.Kind != launch.KindFolder {
		return fmt.Errorf("watch: folder %q: %w", path, apperr.ErrNotFolder)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil && w.path == target.Path {
		return nil
	}
	w.teardownLocked()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create folder watcher: %w", err)
	}
	if err := fsw.Add(target.Path); err != nil {
		fsw.Close()
		return fmt.Errorf("watch: watch folder %q: %w", target.Path, err)
	}

	w.fsw = fsw
	w.path = target.Path
	go w.run(fsw, target.Path)

	w.logger.Info("watch: folder watch started", slog.String("path", target.Path))
	return nil
}

func (w *FolderWatcher) run(fsw *fsnotify.Watcher, path string) {
	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			payload, err := document.BuildFolder(path)
			if err != nil {
				w.logger.Warn("watch: folder re-list failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			w.emit(payload)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch: folder watcher error",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
}

// Stop ends the current watch. Safe to call when nothing is watched.
func (w *FolderWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teardownLocked()
}

func (w *FolderWatcher) teardownLocked() {
	if w.fsw == nil {
		return
	}
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("watch: close folder watcher", slog.String("error", err.Error()))
	}
	w.logger.Info("watch: folder watch stopped", slog.String("path", w.path))
	w.fsw = nil
	w.path = ""
}

// Watching returns the watched path, or "" when idle.
func (w *FolderWatcher) Watching() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}
