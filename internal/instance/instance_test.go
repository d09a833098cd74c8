package instance

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/mudkip/internal/history"
	"github.com/starford/mudkip/internal/launch"
	"github.com/starford/mudkip/internal/pending"
	"github.com/starford/mudkip/internal/sse"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingStore is a history.Store that just captures RecordOpen calls.
type recordingStore struct {
	mu      sync.Mutex
	targets []launch.Target
}

func (s *recordingStore) RecordOpen(target launch.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, target)
	return nil
}

func (s *recordingStore) Recent(int) ([]history.Entry, error) { return nil, nil }
func (s *recordingStore) Clear() error                        { return nil }
func (s *recordingStore) Close() error                        { return nil }

func (s *recordingStore) recorded() []launch.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]launch.Target(nil), s.targets...)
}

func tempMarkdown(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// nextEvent returns the next broadcast message and requires it to carry the
// wanted event name.
func nextEvent(t *testing.T, ch chan []byte, want string) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before %q arrived", want)
		}
		s := string(msg)
		if !strings.Contains(s, "event: "+want) {
			t.Fatalf("next event = %q, want %q", s, want)
		}
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %q", want)
	}
	return ""
}

// expectQuiet asserts that nothing is broadcast within a settle window.
func expectQuiet(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected broadcast %q", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSeedLaunchTarget(t *testing.T) {
	path := tempMarkdown(t)
	target, ok := launch.Classify(path)
	if !ok {
		t.Fatal("classify failed")
	}

	queue := pending.NewQueue()
	broker := sse.NewBroker()
	defer broker.Close()
	store := &recordingStore{}
	c := NewCoordinator(queue, broker, store, testLogger())

	c.SeedLaunchTarget(launch.Parsed{Target: &target})

	popped := queue.Pop()
	if popped == nil || popped.Path != target.Path || popped.TargetType != "file" {
		t.Errorf("queued target = %+v, want %s", popped, target.Path)
	}
	if got := store.recorded(); len(got) != 1 || got[0].Path != target.Path {
		t.Errorf("history recorded %v, want the launch target", got)
	}
}

func TestSeedLaunchTarget_NoTarget(t *testing.T) {
	queue := pending.NewQueue()
	broker := sse.NewBroker()
	defer broker.Close()
	c := NewCoordinator(queue, broker, nil, testLogger())

	c.SeedLaunchTarget(launch.Parsed{})
	if queue.Len() != 0 {
		t.Error("empty launch should queue nothing")
	}
}

func TestHandleArgs_TargetAndOptions(t *testing.T) {
	path := tempMarkdown(t)

	queue := pending.NewQueue()
	broker := sse.NewBroker()
	defer broker.Close()
	c := NewCoordinator(queue, broker, nil, testLogger())

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	c.HandleArgs([]string{"--dark", path})

	// Options first, so a connected shell applies them before the open.
	options := nextEvent(t, ch, sse.EventStartupOptions)
	if !strings.Contains(options, `"theme":"vscode-dark"`) {
		t.Errorf("options event = %q", options)
	}
	opened := nextEvent(t, ch, sse.EventOpenedExternal)
	if !strings.Contains(opened, `"targetType":"file"`) {
		t.Errorf("opened event missing target: %q", opened)
	}
	nextEvent(t, ch, sse.EventWindowFocus)

	if queue.Len() != 1 {
		t.Errorf("queue len = %d, want 1", queue.Len())
	}
}

func TestHandleArgs_OptionsOnlyFocuses(t *testing.T) {
	queue := pending.NewQueue()
	broker := sse.NewBroker()
	defer broker.Close()
	c := NewCoordinator(queue, broker, nil, testLogger())

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	c.HandleArgs([]string{"--light"})

	nextEvent(t, ch, sse.EventStartupOptions)
	nextEvent(t, ch, sse.EventWindowFocus)
	if queue.Len() != 0 {
		t.Error("options-only vector should queue nothing")
	}
}

func TestHandleArgs_EmptyVectorDoesNothing(t *testing.T) {
	queue := pending.NewQueue()
	broker := sse.NewBroker()
	defer broker.Close()
	c := NewCoordinator(queue, broker, nil, testLogger())

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	c.HandleArgs(nil)

	// No target and no options means no focus steal either.
	expectQuiet(t, ch)
	if queue.Len() != 0 {
		t.Error("empty vector should queue nothing")
	}
}

func TestHandleArgs_HelpIsInert(t *testing.T) {
	path := tempMarkdown(t)

	queue := pending.NewQueue()
	broker := sse.NewBroker()
	defer broker.Close()
	c := NewCoordinator(queue, broker, nil, testLogger())

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	c.HandleArgs([]string{"--help", path})

	// A vector that printed help does nothing further: no queue entry, no
	// broadcast, no focus.
	expectQuiet(t, ch)
	if queue.Len() != 0 {
		t.Errorf("queue len = %d after forwarded --help, want 0", queue.Len())
	}
}

func TestProbeAndForward(t *testing.T) {
	var mu sync.Mutex
	var forwarded ForwardRequest
	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/instance/open", func(w http.ResponseWriter, r *http.Request) {
		var req ForwardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		forwarded = req
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	if !Probe(ctx, srv.URL) {
		t.Fatal("Probe should succeed against live server")
	}

	if err := Forward(ctx, srv.URL, "secret", []string{"--dark", "/a.md"}); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(forwarded.Args) != 2 || forwarded.Args[0] != "--dark" {
		t.Errorf("forwarded args = %v", forwarded.Args)
	}
}

func TestProbe_NoServer(t *testing.T) {
	if Probe(context.Background(), "http://127.0.0.1:1") {
		t.Error("Probe should fail with nothing listening")
	}
}
