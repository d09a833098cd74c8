// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mudkip/internal/api"
	"github.com/starford/mudkip/internal/dialog"
	"github.com/starford/mudkip/internal/document"
	"github.com/starford/mudkip/internal/editor"
	"github.com/starford/mudkip/internal/history"
	"github.com/starford/mudkip/internal/instance"
	"github.com/starford/mudkip/internal/mcpserver"
	"github.com/starford/mudkip/internal/pending"
	"github.com/starford/mudkip/internal/sse"
	"github.com/starford/mudkip/internal/theme"
	"github.com/starford/mudkip/internal/watch"
)

// Run starts the application with the given options. It blocks until the
// context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logger on stderr; stdout belongs to --help/--version
	// output and to the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Bool("history_enabled", cfg.History.Enabled),
		slog.Bool("mcp_enabled", cfg.MCP.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Recent-documents store.
	var store history.Store
	if cfg.History.Enabled {
		dbPath, err := historyPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve history path: %w", err)
		}
		db, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("init history: %w", err)
		}
		defer db.Close()
		store = db
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Watch coordinators feed the event stream.
	fileWatch := watch.NewFileWatcher(func(p *document.FilePayload) {
		broker.Publish(sse.Event{Type: sse.EventFileChanged, Data: p})
	}, logger)
	defer fileWatch.Stop()

	folderWatch := watch.NewFolderWatcher(func(p *document.FolderPayload) {
		broker.Publish(sse.Event{Type: sse.EventFolderChanged, Data: p})
	}, logger)
	defer folderWatch.Stop()

	// Launch hand-off.
	queue := pending.NewQueue()
	coordinator := instance.NewCoordinator(queue, broker, store, logger)
	coordinator.SeedLaunchTarget(app.launch)

	svc := &api.Service{
		FileWatch:   fileWatch,
		FolderWatch: folderWatch,
		Queue:       queue,
		Instance:    coordinator,
		History:     store,
		Startup:     app.launch.Options,
		Picker:      dialog.Picker{},
		Editor:      editor.Launcher{Command: cfg.Editor.Command},
		Theme:       theme.Detector{},
	}
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated; also the single-instance probe).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if cfg.MCP.Enabled {
		g.Go(func() error {
			logger.Info("Starting MCP stdio server")
			if err := mcpserver.New(store).ServeStdio(); err != nil {
				logger.Error("MCP server error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// historyPath resolves the history database location, defaulting to the
// user's config directory.
func historyPath(cfg *Config) (string, error) {
	if cfg.History.Path != "" {
		return cfg.History.Path, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "mudkip")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
