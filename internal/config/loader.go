package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"apsmcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/apsmcp"
	configFileName = "config.yaml"
)

// Environment variables that override file configuration.
const (
	EnvClientID     = "APS_CLIENT_ID"
	EnvClientSecret = "APS_CLIENT_SECRET"
	EnvScope        = "APS_SCOPE"
	EnvCallbackPort = "APS_CALLBACK_PORT"
)

// DefaultConfigDir returns ~/.config/apsmcp.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath (the default directory when
// empty), applies environment overrides and validates the result.
func LoadConfig(configPath string) (Config, error) {
	if configPath == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return Config{}, err
		}
		configPath = dir
	}

	cfg := GetDefaultConfig()
	configFilePath := filepath.Join(configPath, configFileName)

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, ConfigurationError{
				FilePath:  configFilePath,
				ErrorType: ErrorTypeParse,
				Message:   "config.yaml is not valid YAML",
				Details:   err.Error(),
			}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if cfg.Auth.SessionFile == "" {
		cfg.Auth.SessionFile = filepath.Join(configPath, sessionFileName)
	}

	if errs := Validate(cfg); errs.HasErrors() {
		for i := range errs.Errors {
			errs.Errors[i].FilePath = configFilePath
		}
		return Config{}, errs
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvClientID); ok && v != "" {
		cfg.Auth.ClientID = v
	}
	if v, ok := lookup(EnvClientSecret); ok && v != "" {
		cfg.Auth.ClientSecret = v
	}
	if v, ok := lookup(EnvScope); ok && strings.TrimSpace(v) != "" {
		cfg.Auth.Scope = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvCallbackPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return ConfigurationError{
				Field:     "auth.callbackPort",
				ErrorType: ErrorTypeValidation,
				Message:   fmt.Sprintf("%s must be a port number, got %q", EnvCallbackPort, v),
			}
		}
		cfg.Auth.CallbackPort = port
	}
	return nil
}
