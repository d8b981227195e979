package app

import (
	"apsmcp/internal/config"
)

// Config holds the runtime settings of one invocation.
type Config struct {
	Debug bool

	// ConfigPath overrides the configuration directory (~/.config/apsmcp).
	ConfigPath string

	// MetricsAddress overrides metrics.address when set.
	MetricsAddress string

	// Version is reported in the MCP server handshake.
	Version string

	// Settings is the loaded configuration. NewApplication loads it when nil.
	Settings *config.Config
}

// NewConfig creates a new application configuration.
func NewConfig(debug bool, configPath, metricsAddress, version string) *Config {
	return &Config{
		Debug:          debug,
		ConfigPath:     configPath,
		MetricsAddress: metricsAddress,
		Version:        version,
	}
}
