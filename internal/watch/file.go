// Package watch owns the live-reload coordinators: at most one watched file
// and at most one watched folder per process, each feeding rebuilt payloads
// to an emit callback whenever the filesystem changes underneath them.
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

// FileWatcher watches a single markdown file. Starting a new watch replaces
// the previous one; the watcher handle and the tracked path always change
// together.
type FileWatcher struct {
	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	path   string
	emit   func(*document.FilePayload)
	logger *slog.Logger
}

// NewFileWatcher creates a stopped file watcher. emit is called with a fresh
// payload after each observed change; it must not block for long.
func NewFileWatcher(emit func(*document.FilePayload), logger *slog.Logger) *FileWatcher {
	return &FileWatcher{emit: emit, logger: logger}
}

// Start begins watching path, replacing any previous watch. Re-starting on
// the path already being watched is a no-op. The path must canonicalize to a
// regular markdown file.
func (w *FileWatcher) Start(path string) error {
	target, ok := launch.Classify(path)
	if !ok || target.Kind != launch.KindFile {
		return fmt.Errorf("watch: file %q: %w", path, apperr.ErrNotMarkdown)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil && w.path == target.Path {
		return nil
	}
	w.teardownLocked()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create file watcher: %w", err)
	}
	if err := fsw.Add(target.Path); err != nil {
		fsw.Close()
		return fmt.Errorf("watch: watch file %q: %w", target.Path, err)
	}

	w.fsw = fsw
	w.path = target.Path
	go w.run(fsw, target.Path)

	w.logger.Info("watch: file watch started", slog.String("path", target.Path))
	return nil
}

// run processes events until fsw is closed. It captures fsw and path at
// start, so a replaced watch's goroutine drains its own (closed) channels and
// exits without touching the successor's state.
func (w *FileWatcher) run(fsw *fsnotify.Watcher, path string) {
	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			// A removed or renamed file keeps its watch; only content
			// arrival triggers a rebuild.
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			payload, err := document.BuildFile(path)
			if err != nil {
				w.logger.Warn("watch: file rebuild failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			w.emit(payload)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch: file watcher error",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
}

// Stop ends the current watch. Safe to call when nothing is watched.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teardownLocked()
}

func (w *FileWatcher) teardownLocked() {
	if w.fsw == nil {
		return
	}
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("watch: close file watcher", slog.String("error", err.Error()))
	}
	w.logger.Info("watch: file watch stopped", slog.String("path", w.path))
	w.fsw = nil
	w.path = ""
}

// Watching returns the watched path, or "" when idle.
func (w *FileWatcher) Watching() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}
