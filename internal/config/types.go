package config

import "time"

// Config is the top-level configuration structure for apsmcp.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Tools   ToolsConfig   `yaml:"tools"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig configures the request forwarder.
type APIConfig struct {
	BaseURL   string        `yaml:"baseURL,omitempty"`   // Resource API base; its host is the only allowed host
	Timeout   time.Duration `yaml:"timeout,omitempty"`   // Per-request HTTP timeout
	RateLimit float64       `yaml:"rateLimit,omitempty"` // Requests per second, 0 disables limiting
	Burst     int           `yaml:"burst,omitempty"`
}

// AuthConfig configures both OAuth flows.
type AuthConfig struct {
	BaseURL      string        `yaml:"baseURL,omitempty"` // Serves /authorize and /token
	ClientID     string        `yaml:"clientID,omitempty"`
	ClientSecret string        `yaml:"clientSecret,omitempty"`
	Scope        string        `yaml:"scope,omitempty"`
	CallbackPort int           `yaml:"callbackPort,omitempty"`
	SessionFile  string        `yaml:"sessionFile,omitempty"` // Defaults to <config dir>/session.json
	LoginTimeout time.Duration `yaml:"loginTimeout,omitempty"`
	UsePKCE      *bool         `yaml:"usePKCE,omitempty"`
}

// PKCEEnabled reports whether the authorization-code flow sends a PKCE challenge.
func (a AuthConfig) PKCEEnabled() bool {
	return a.UsePKCE == nil || *a.UsePKCE
}

// ToolsConfig tunes the MCP tool handlers.
type ToolsConfig struct {
	TreeMaxDepth int `yaml:"treeMaxDepth,omitempty"`
	PageLimit    int `yaml:"pageLimit,omitempty"`
}

// LoggingConfig selects level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // text or json
}

// MetricsConfig enables the Prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `yaml:"address,omitempty"`
}
