package oauth

import (
	"context"

	pkgoauth "apsmcp/pkg/oauth"
)

// AuthMode names which token lifecycle produced a token.
type AuthMode string

const (
	AuthModeUser        AuthMode = "user"
	AuthModeApplication AuthMode = "application"
)

// CredentialsFunc resolves the application credentials on each call so
// environment changes and config reloads are honored.
type CredentialsFunc func() (pkgoauth.Credentials, error)

// TokenProvider hands out bearer tokens: a valid user session wins,
// otherwise an application token for the configured scope is used.
type TokenProvider struct {
	credentials CredentialsFunc
	cache       *TokenCache
	session     *Session
	scope       string
}

// NewTokenProvider wires the token sources. session may be nil.
func NewTokenProvider(credentials CredentialsFunc, cache *TokenCache, session *Session, scope string) *TokenProvider {
	return &TokenProvider{
		credentials: credentials,
		cache:       cache,
		session:     session,
		scope:       scope,
	}
}

// Token returns a bearer token and the mode that produced it.
func (p *TokenProvider) Token(ctx context.Context) (string, AuthMode, error) {
	creds, err := p.credentials()
	if err != nil {
		return "", "", err
	}

	if p.session != nil {
		if tok, ok := p.session.GetValidToken(ctx, creds.ClientID, creds.ClientSecret); ok {
			return tok, AuthModeUser, nil
		}
	}

	tok, err := p.cache.GetToken(ctx, creds.ClientID, creds.ClientSecret, p.scope)
	if err != nil {
		return "", "", err
	}
	return tok, AuthModeApplication, nil
}

// Credentials resolves the application credentials.
func (p *TokenProvider) Credentials() (pkgoauth.Credentials, error) {
	return p.credentials()
}

// Session returns the interactive session, or nil.
func (p *TokenProvider) Session() *Session {
	return p.session
}

// Scope returns the scope requested for application tokens.
func (p *TokenProvider) Scope() string {
	return p.scope
}
