// Package oauth implements the OAuth 2.0 protocol operations apsmcp needs
// against the platform's authentication service.
//
// It wraps golang.org/x/oauth2 for the three grants the platform supports:
//
//   - client_credentials: application ("two-legged") tokens
//   - authorization_code: user ("three-legged") tokens, optionally with PKCE
//   - refresh_token: renewal of user tokens
//
// The package is stateless. Caching, persistence and the interactive browser
// flow live in internal/oauth.
//
// Failed exchanges are reported as *TokenError, which carries the HTTP status
// and the raw response body so callers can show the provider's own message.
package oauth
