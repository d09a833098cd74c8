package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"

	"github.com/starford/mudkip/internal"
	"github.com/starford/mudkip/internal/instance"
	"github.com/starford/mudkip/internal/launch"
	pkgconfig "github.com/starford/mudkip/pkg/config"
)

func main() {
	parsed := launch.ParseArgs(os.Args[1:])
	if parsed.ExitAfterPrint {
		return
	}

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(configPath(), cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Single-instance hand-off: when an owner is already listening, forward
	// this invocation's arguments to it and exit.
	baseURL := cfg.App.HTTP.BaseURL()
	if instance.Probe(ctx, baseURL) {
		if err := instance.Forward(ctx, baseURL, cfg.Auth.Token, os.Args[1:]); err != nil {
			slog.Error("failed to forward to running instance", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLaunch(parsed),
	}
	if err := internal.Run(ctx, opts...); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// configPath returns the config file location: the MUDKIP_CONFIG_FILE
// override, or config.yaml in the user config directory.
func configPath() string {
	if p := os.Getenv("MUDKIP_CONFIG_FILE"); p != "" {
		return p
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(base, "mudkip", "config.yaml")
}
