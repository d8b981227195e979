package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"relative api url", func(c *Config) { c.API.BaseURL = "/api" }, "api.baseURL"},
		{"ftp auth url", func(c *Config) { c.Auth.BaseURL = "ftp://auth.example.com" }, "auth.baseURL"},
		{"negative rate", func(c *Config) { c.API.RateLimit = -1 }, "api.rateLimit"},
		{"burst missing", func(c *Config) { c.API.Burst = 0 }, "api.burst"},
		{"zero port", func(c *Config) { c.Auth.CallbackPort = 0 }, "auth.callbackPort"},
		{"zero login timeout", func(c *Config) { c.Auth.LoginTimeout = 0 }, "auth.loginTimeout"},
		{"depth too deep", func(c *Config) { c.Tools.TreeMaxDepth = MaxTreeDepth + 1 }, "tools.treeMaxDepth"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)

			errs := Validate(cfg)
			if tt.wantField == "" {
				assert.False(t, errs.HasErrors(), errs.Error())
				return
			}
			if assert.Len(t, errs.Errors, 1) {
				assert.Equal(t, tt.wantField, errs.Errors[0].Field)
			}
		})
	}
}

func TestConfigurationError_DetailedError(t *testing.T) {
	ce := ConfigurationError{
		FilePath:    "/home/u/.config/apsmcp/config.yaml",
		Field:       "auth.clientID",
		Message:     "missing",
		Suggestions: []string{"set it"},
	}

	detailed := ce.DetailedError()
	assert.Contains(t, detailed, "configuration error (auth.clientID): missing")
	assert.Contains(t, detailed, "File: /home/u/.config/apsmcp/config.yaml")
	assert.Contains(t, detailed, "- set it")
}
