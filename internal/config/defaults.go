package config

import (
	"time"

	"apsmcp/internal/oauth"
)

const (
	// DefaultAPIBaseURL is the resource API host.
	DefaultAPIBaseURL = "https://developer.api.autodesk.com"

	// DefaultAuthBaseURL serves the authorize and token endpoints.
	DefaultAuthBaseURL = DefaultAPIBaseURL + "/authentication/v2"

	DefaultAPITimeout   = 30 * time.Second
	DefaultRateLimit    = 10
	DefaultBurst        = 20
	DefaultTreeMaxDepth = 2
	DefaultPageLimit    = 200

	sessionFileName = "session.json"
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   DefaultAPITimeout,
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		Auth: AuthConfig{
			BaseURL:      DefaultAuthBaseURL,
			Scope:        oauth.DefaultScope,
			CallbackPort: oauth.DefaultCallbackPort,
			LoginTimeout: oauth.DefaultLoginTimeout,
		},
		Tools: ToolsConfig{
			TreeMaxDepth: DefaultTreeMaxDepth,
			PageLimit:    DefaultPageLimit,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
