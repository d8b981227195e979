package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"apsmcp/internal/config"
	"apsmcp/pkg/logging"
)

// Application is a bootstrapped apsmcp server.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, initializes logging and builds all
// services. Logging goes to stderr because stdout is reserved for MCP.
func NewApplication(cfg *Config) (*Application, error) {
	if err := LoadSettings(cfg, os.Stderr); err != nil {
		return nil, err
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// LoadSettings initializes logging on output and loads cfg.Settings unless
// it is already populated.
func LoadSettings(cfg *Config, output io.Writer) error {
	level := logging.LevelInfo
	format := logging.FormatText
	if cfg.Settings != nil {
		level = logging.ParseLevel(cfg.Settings.Logging.Level)
		format = logging.Format(cfg.Settings.Logging.Format)
	}
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, format, output)

	if cfg.Settings != nil {
		return nil
	}

	settings, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Settings = &settings

	// Re-initialize with the configured level and format.
	if !cfg.Debug {
		level = logging.ParseLevel(settings.Logging.Level)
	}
	logging.Init(level, logging.Format(settings.Logging.Format), output)

	if cfg.ConfigPath != "" {
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	}
	return nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves MCP over stdio and blocks until ctx is cancelled or the client
// disconnects.
func (a *Application) Run(ctx context.Context) error {
	return runServer(ctx, a.config, a.services, os.Stdin, os.Stdout)
}
