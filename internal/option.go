package internal

import "github.com/starford/mudkip/internal/launch"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	launch launch.Parsed
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLaunch sets the parsed cold-start argument vector.
func WithLaunch(parsed launch.Parsed) Option {
	return func(a *application) {
		a.launch = parsed
	}
}
