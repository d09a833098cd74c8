package api

import (
	"context"

	"github.com/starford/mudkip/internal/history"
	"github.com/starford/mudkip/internal/instance"
	"github.com/starford/mudkip/internal/launch"
	"github.com/starford/mudkip/internal/pending"
	"github.com/starford/mudkip/internal/watch"
)

// Picker shows native selection dialogs.
type Picker interface {
	PickFile(ctx context.Context) (string, error)
	PickFolder(ctx context.Context) (string, error)
}

// EditorLauncher opens a document in an external editor.
type EditorLauncher interface {
	Open(path string, line int) error
}

// ThemeDetector reports the OS appearance.
type ThemeDetector interface {
	System(ctx context.Context) string
}

// Service aggregates the backend subsystems the HTTP surface exposes to the
// shell. History may be nil when disabled; the other fields are required.
type Service struct {
	FileWatch   *watch.FileWatcher
	FolderWatch *watch.FolderWatcher
	Queue       *pending.Queue
	Instance    *instance.Coordinator
	History     history.Store
	Startup     launch.StartupOptions

	Picker Picker
	Editor EditorLauncher
	Theme  ThemeDetector
}
