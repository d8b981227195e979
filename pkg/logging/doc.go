// Package logging provides subsystem-tagged structured logging for apsmcp.
//
// It is a thin layer over log/slog. Every entry carries a "subsystem" attribute
// and an optional "error" attribute. Output goes to stderr because stdout is
// reserved for the MCP stdio transport.
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//	logging.Info("Bootstrap", "loaded configuration from %s", path)
//	logging.Error("APIClient", err, "request to %s failed", path)
//
// Audit emits SECURITY_AUDIT lines for token persistence events. Token values
// are never logged, only metadata such as expiry and scope.
package logging
