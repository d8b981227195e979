package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"apsmcp/pkg/logging"
	pkgoauth "apsmcp/pkg/oauth"
)

// DefaultLoginTimeout bounds the wait for the authorization callback.
const DefaultLoginTimeout = 2 * time.Minute

// SessionState is the lifecycle position of the interactive session.
type SessionState int

const (
	StateNoSession SessionState = iota
	StateAwaitingCallback
	StateAuthenticated
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case StateNoSession:
		return "no_session"
	case StateAwaitingCallback:
		return "awaiting_callback"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthCodeClient is the subset of the token endpoint client used by Session.
type AuthCodeClient interface {
	AuthorizationURL(creds pkgoauth.Credentials, redirectURI, scope, state string, pkce *pkgoauth.PKCEChallenge) string
	ExchangeCode(ctx context.Context, creds pkgoauth.Credentials, redirectURI, scope, code string, pkce *pkgoauth.PKCEChallenge) (*pkgoauth.Token, error)
	RefreshToken(ctx context.Context, creds pkgoauth.Credentials, refreshToken, scope string) (*pkgoauth.Token, error)
}

// LoginOptions parameterize one Login attempt.
type LoginOptions struct {
	ClientID     string
	ClientSecret string
	Scope        string
	CallbackPort int

	// OnAuthURL, if set, receives the authorize URL before the browser is
	// opened so callers can show it when no browser is available.
	OnAuthURL func(url string)
}

// SessionStatus is a snapshot for status reporting. It never carries token
// values.
type SessionStatus struct {
	State            string     `json:"state"`
	Scope            string     `json:"scope,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	HasRefreshToken  bool       `json:"has_refresh_token"`
	LastRefreshError string     `json:"last_refresh_error,omitempty"`
}

// Session is the interactive user session. All methods are safe for
// concurrent use.
type Session struct {
	client  AuthCodeClient
	store   SessionStore
	open    BrowserOpener
	timeout time.Duration
	usePKCE bool
	now     func() time.Time

	mu               sync.Mutex
	state            SessionState
	record           *TokenRecord
	loaded           bool
	lastRefreshError string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBrowserOpener replaces OpenBrowser.
func WithBrowserOpener(open BrowserOpener) SessionOption {
	return func(s *Session) {
		s.open = open
	}
}

// WithLoginTimeout overrides DefaultLoginTimeout.
func WithLoginTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPKCE toggles the S256 code challenge.
func WithPKCE(enabled bool) SessionOption {
	return func(s *Session) {
		s.usePKCE = enabled
	}
}

// WithSessionClock overrides time.Now.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session backed by store. Nothing is loaded until
// first use.
func NewSession(client AuthCodeClient, store SessionStore, opts ...SessionOption) *Session {
	s := &Session{
		client:  client,
		store:   store,
		open:    OpenBrowser,
		timeout: DefaultLoginTimeout,
		usePKCE: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensureLoadedLocked reads the store once. REQUIRES: s.mu held.
func (s *Session) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	record, err := s.store.Load()
	switch {
	case err == nil:
		s.record = record
		if s.state != StateAwaitingCallback {
			s.state = StateAuthenticated
		}
	case errors.Is(err, ErrNoSession):
	default:
		logging.Warn("OAuth", "Ignoring unreadable session: %v", err)
	}
}

// settledStateLocked is the state outside of a login attempt. REQUIRES: s.mu held.
func (s *Session) settledStateLocked() SessionState {
	if s.record != nil {
		return StateAuthenticated
	}
	return StateNoSession
}

// Login runs the authorization-code flow and returns the new access token.
func (s *Session) Login(ctx context.Context, opts LoginOptions) (string, error) {
	creds := pkgoauth.Credentials{ClientID: opts.ClientID, ClientSecret: opts.ClientSecret}
	if !creds.IsComplete() {
		return "", errors.New("client ID and secret are required for login")
	}
	scope := opts.Scope
	if scope == "" {
		scope = DefaultScope
	}
	port := opts.CallbackPort
	if port == 0 {
		port = DefaultCallbackPort
	}

	s.mu.Lock()
	s.ensureLoadedLocked()
	if s.state == StateAwaitingCallback {
		s.mu.Unlock()
		return "", errors.New("a login is already in progress")
	}
	s.state = StateAwaitingCallback
	s.mu.Unlock()

	token, err := s.login(ctx, creds, scope, port, opts.OnAuthURL)

	s.mu.Lock()
	s.state = s.settledStateLocked()
	s.mu.Unlock()

	return token, err
}

func (s *Session) login(ctx context.Context, creds pkgoauth.Credentials, scope string, port int, onAuthURL func(string)) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	server := NewCallbackServer(port)
	redirectURI, err := server.Start(waitCtx)
	if err != nil {
		return "", err
	}
	defer server.Stop()

	state := pkgoauth.GenerateState()
	var pkce *pkgoauth.PKCEChallenge
	if s.usePKCE {
		pkce = pkgoauth.GeneratePKCE()
	}

	authURL := s.client.AuthorizationURL(creds, redirectURI, scope, state, pkce)
	if onAuthURL != nil {
		onAuthURL(authURL)
	}
	if err := s.open(authURL); err != nil {
		logging.Warn("OAuth", "Could not open a browser, open the authorization URL manually: %v", err)
	}

	logging.Info("OAuth", "Waiting up to %s for the authorization callback on %s", s.timeout, redirectURI)

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", ErrLoginTimeout
		}
		return "", fmt.Errorf("waiting for authorization callback: %w", err)
	}
	server.Stop()

	if result.IsError() {
		return "", &AuthorizationError{Code: result.Error, Description: result.ErrorDescription}
	}
	if result.State != state {
		return "", &AuthorizationError{Code: "invalid_state", Description: "The callback state does not match the login request."}
	}

	tok, err := s.client.ExchangeCode(ctx, creds, redirectURI, scope, result.Code, pkce)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	record := recordFromToken(tok)
	if err := s.store.Save(record); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.record = record
	s.loaded = true
	s.lastRefreshError = ""
	s.mu.Unlock()

	logging.Info("OAuth", "Interactive login completed for scope %q", record.Scope)
	return record.AccessToken, nil
}

// GetValidToken returns a user access token with more than ExpiryMargin of
// validity left, refreshing it once if needed. A failed refresh clears the
// session and yields ("", false); it is never an error.
func (s *Session) GetValidToken(ctx context.Context, clientID, clientSecret string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked()
	if s.record == nil {
		return "", false
	}
	if s.record.Expiry().Sub(s.now()) > ExpiryMargin {
		return s.record.AccessToken, true
	}

	if s.record.RefreshToken == "" {
		s.dropLocked("session expired and has no refresh token")
		return "", false
	}

	creds := pkgoauth.Credentials{ClientID: clientID, ClientSecret: clientSecret}
	tok, err := s.client.RefreshToken(ctx, creds, s.record.RefreshToken, s.record.Scope)
	if err != nil {
		s.dropLocked(err.Error())
		return "", false
	}

	record := recordFromToken(tok)
	if err := s.store.Save(record); err != nil {
		logging.Error("OAuth", err, "Refreshed session could not be persisted, keeping it in memory")
	}
	s.record = record
	s.lastRefreshError = ""
	logging.Debug("OAuth", "Refreshed interactive session, valid until %s", record.Expiry().UTC().Format(time.RFC3339))
	return record.AccessToken, true
}

// dropLocked ends the session after a terminal refresh failure. REQUIRES: s.mu held.
func (s *Session) dropLocked(reason string) {
	logging.Warn("OAuth", "Interactive session ended, falling back to application credentials: %s", reason)
	if err := s.store.Clear(); err != nil {
		logging.Error("OAuth", err, "Failed to clear persisted session")
	}
	s.record = nil
	s.lastRefreshError = reason
	if s.state != StateAwaitingCallback {
		s.state = StateNoSession
	}
}

// Logout deletes the persisted session and the in-memory copy.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Clear()
	s.record = nil
	s.loaded = true
	s.lastRefreshError = ""
	if s.state != StateAwaitingCallback {
		s.state = StateNoSession
	}
	return err
}

// Reload forgets the in-memory copy so the next access re-reads the store.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.record = nil
	if s.state != StateAwaitingCallback {
		s.state = StateNoSession
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return s.state
}

// Status returns a snapshot without token values.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	st := SessionStatus{
		State:            s.state.String(),
		LastRefreshError: s.lastRefreshError,
	}
	if s.record != nil {
		st.Scope = s.record.Scope
		expiry := s.record.Expiry().UTC()
		st.ExpiresAt = &expiry
		st.HasRefreshToken = s.record.RefreshToken != ""
	}
	return st
}
