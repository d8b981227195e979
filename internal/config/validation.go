package config

import (
	"fmt"
	"net/url"

	"apsmcp/pkg/logging"
)

// MaxTreeDepth is the upper bound accepted for tools.treeMaxDepth.
const MaxTreeDepth = 5

// Validate checks cfg and collects every problem found.
func Validate(cfg Config) ConfigurationErrorCollection {
	var errs ConfigurationErrorCollection

	validateBaseURL(&errs, "api.baseURL", cfg.API.BaseURL)
	validateBaseURL(&errs, "auth.baseURL", cfg.Auth.BaseURL)

	if cfg.API.Timeout < 0 {
		errs.Add("api.timeout", "must not be negative")
	}
	if cfg.API.RateLimit < 0 {
		errs.Add("api.rateLimit", "must not be negative")
	}
	if cfg.API.RateLimit > 0 && cfg.API.Burst < 1 {
		errs.Add("api.burst", "must be at least 1 when rateLimit is set")
	}

	if cfg.Auth.CallbackPort < 1 || cfg.Auth.CallbackPort > 65535 {
		errs.Add("auth.callbackPort", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Auth.CallbackPort))
	}
	if cfg.Auth.LoginTimeout <= 0 {
		errs.Add("auth.loginTimeout", "must be positive")
	}

	if cfg.Tools.TreeMaxDepth < 1 || cfg.Tools.TreeMaxDepth > MaxTreeDepth {
		errs.Add("tools.treeMaxDepth", fmt.Sprintf("must be between 1 and %d", MaxTreeDepth))
	}
	if cfg.Tools.PageLimit < 1 {
		errs.Add("tools.pageLimit", "must be at least 1")
	}

	switch logging.Format(cfg.Logging.Format) {
	case logging.FormatText, logging.FormatJSON, "":
	default:
		errs.Add("logging.format", fmt.Sprintf("must be text or json, got %q", cfg.Logging.Format))
	}

	return errs
}

func validateBaseURL(errs *ConfigurationErrorCollection, field, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		errs.Add(field, fmt.Sprintf("must be an absolute URL, got %q", raw))
		return
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		errs.Add(field, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
}
