// Package oauth manages the tokens used against the resource API.
//
// Two token lifecycles are implemented:
//
//   - TokenCache holds one client-credentials (two-legged) token for the
//     process, keyed by scope, and refreshes it when less than a minute of
//     validity remains.
//   - Session drives the interactive authorization-code (three-legged) flow.
//     Login starts a short-lived CallbackServer on a local port, opens the
//     browser at the authorize endpoint and waits up to two minutes for the
//     redirect. The resulting token pair is persisted through a SessionStore
//     and refreshed on demand by GetValidToken.
//
// TokenProvider combines both: a valid user session wins, otherwise the
// application token is used.
//
// # Session Storage
//
// FileSessionStore writes a single JSON record:
//
//	~/.config/apsmcp/session.json
//
// SECURITY: the file is created with 0600 permissions inside a 0700
// directory and token values are never logged. Save and Clear emit
// SECURITY_AUDIT log lines.
//
// A SessionWatcher can observe the file so that a login performed by another
// process (for example `apsmcp auth login` while the server runs) is picked
// up without a restart.
package oauth
