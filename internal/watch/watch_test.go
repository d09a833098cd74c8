package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/mudkip/internal/document"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type filePayloadSink struct {
	mu       sync.Mutex
	payloads []*document.FilePayload
}

func (s *filePayloadSink) emit(p *document.FilePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
}

func (s *filePayloadSink) last() *document.FilePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.payloads) == 0 {
		return nil
	}
	return s.payloads[len(s.payloads)-1]
}

func TestFileWatcher_EmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "v1")

	sink := &filePayloadSink{}
	w := NewFileWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p := sink.last()
		return p != nil && p.Content == "v2"
	}, "no payload with updated content emitted")
}

func TestFileWatcher_IdempotentSamePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "v1")

	sink := &filePayloadSink{}
	w := NewFileWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(path); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := w.Start(path); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := w.Watching(); got == "" {
		t.Fatal("watcher idle after idempotent restart")
	}

	// The surviving watch must still observe writes.
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p := sink.last()
		return p != nil && p.Content == "v2"
	}, "watch did not survive idempotent restart")
}

func TestFileWatcher_ReplacePath(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.md", "1")
	second := writeFile(t, dir, "second.md", "2")

	sink := &filePayloadSink{}
	w := NewFileWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(first); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(second); err != nil {
		t.Fatal(err)
	}

	if got := w.Watching(); filepath.Base(got) != "second.md" {
		t.Fatalf("Watching = %q, want second.md", got)
	}

	if err := os.WriteFile(second, []byte("2b"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p := sink.last()
		return p != nil && p.FileName == "second.md" && p.Content == "2b"
	}, "replacement watch not active")
}

func TestFileWatcher_RejectsNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "package main")

	w := NewFileWatcher(func(*document.FilePayload) {}, testLogger())
	defer w.Stop()

	if err := w.Start(path); err == nil {
		t.Fatal("expected error for non-markdown file")
	}
	if w.Watching() != "" {
		t.Error("watcher should stay idle after rejected start")
	}
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "v1")

	w := NewFileWatcher(func(*document.FilePayload) {}, testLogger())
	if err := w.Start(path); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	if w.Watching() != "" {
		t.Error("still watching after Stop")
	}
	w.Stop()
	w.Stop()
}

func TestFileWatcher_RemoveDoesNotEmit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "v1")

	sink := &filePayloadSink{}
	w := NewFileWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if p := sink.last(); p != nil {
		t.Errorf("unexpected payload after remove: %+v", p)
	}
}

type folderPayloadSink struct {
	mu       sync.Mutex
	payloads []*document.FolderPayload
}

func (s *folderPayloadSink) emit(p *document.FolderPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
}

func (s *folderPayloadSink) last() *document.FolderPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.payloads) == 0 {
		return nil
	}
	return s.payloads[len(s.payloads)-1]
}

func TestFolderWatcher_EmitsOnCreate(t *testing.T) {
	dir := t.TempDir()

	sink := &folderPayloadSink{}
	w := NewFolderWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(dir); err != nil {
		t.Fatalf("Start: %v", err)
	}

	writeFile(t, dir, "new.md", "hello")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p := sink.last()
		if p == nil {
			return false
		}
		for _, f := range p.Files {
			if f.FileName == "new.md" {
				return true
			}
		}
		return false
	}, "listing never included the new file")
}

func TestFolderWatcher_EmitsOnRemove(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gone.md", "x")

	sink := &folderPayloadSink{}
	w := NewFolderWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p := sink.last()
		return p != nil && len(p.Files) == 0
	}, "listing never dropped the removed file")
}

func TestFolderWatcher_NonMarkdownExcludedFromListing(t *testing.T) {
	dir := t.TempDir()

	sink := &folderPayloadSink{}
	w := NewFolderWatcher(sink.emit, testLogger())
	defer w.Stop()

	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "code.go", "package x")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return sink.last() != nil
	}, "no re-list after non-markdown create")

	if p := sink.last(); p != nil && len(p.Files) != 0 {
		t.Errorf("listing should exclude non-markdown files, got %+v", p.Files)
	}
}

func TestFolderWatcher_RejectsFilePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "x")

	w := NewFolderWatcher(func(*document.FolderPayload) {}, testLogger())
	defer w.Stop()

	if err := w.Start(path); err == nil {
		t.Fatal("expected error when starting folder watch on a file")
	}
	if w.Watching() != "" {
		t.Error("watcher should stay idle after rejected start")
	}
}
