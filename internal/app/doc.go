// Package app wires configuration, token handling, the request forwarder
// and the MCP tools into a running server.
//
// # Bootstrap
//
// NewApplication performs the start-up sequence:
//
//  1. Initialize logging on stderr (stdout carries the MCP stdio protocol)
//  2. Load config.yaml from --config-path or ~/.config/apsmcp
//  3. Build the services: token endpoint client, token cache, session
//     store and session, API client with rate limit and metrics, tool
//     provider
//
// Run serves MCP over stdio until the context is cancelled or stdin is
// closed. When a metrics address is configured, a Prometheus endpoint is
// served next to it, and a session file watcher picks up logins performed
// by another process (for example `apsmcp auth login`).
//
// The CLI commands reuse InitializeServices for one-shot operations such as
// login, status and raw API requests.
package app
