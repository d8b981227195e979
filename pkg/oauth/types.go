package oauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Grant types sent to the token endpoint.
const (
	GrantClientCredentials = "client_credentials"
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// DefaultTokenLifetime is assumed when the token response carries no expires_in.
const DefaultTokenLifetime = time.Hour

// Credentials identify the registered application.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// IsComplete reports whether both halves of the credential pair are set.
func (c Credentials) IsComplete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Endpoints are the authorize and token URLs of the authentication service.
type Endpoints struct {
	AuthURL  string
	TokenURL string
}

// EndpointsFromBase derives the endpoints from the authentication base URL,
// e.g. https://developer.api.autodesk.com/authentication/v2.
func EndpointsFromBase(base string) Endpoints {
	base = strings.TrimSuffix(base, "/")
	return Endpoints{
		AuthURL:  base + "/authorize",
		TokenURL: base + "/token",
	}
}

// Token is the result of a successful token exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string

	// ExpiresAt is the provider-reported expiry (issue time + expires_in).
	ExpiresAt time.Time
}

func fromOAuth2(tok *oauth2.Token, requestedScope string, now time.Time) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        requestedScope,
		ExpiresAt:    tok.Expiry,
	}
	if granted, ok := tok.Extra("scope").(string); ok && granted != "" {
		t.Scope = granted
	}
	if t.ExpiresAt.IsZero() {
		t.ExpiresAt = now.Add(DefaultTokenLifetime)
	}
	return t
}

// TokenError reports a non-success response from the token endpoint.
type TokenError struct {
	Grant      string
	StatusCode int
	Body       string
	ErrorCode  string
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = e.ErrorCode
	}
	return fmt.Sprintf("token request (%s) failed with status %d: %s", e.Grant, e.StatusCode, body)
}

// IsTokenError reports whether err is or wraps a *TokenError.
func IsTokenError(err error) bool {
	var te *TokenError
	return errors.As(err, &te)
}

// wrapExchangeError converts x/oauth2 failures into *TokenError when the
// provider answered, and into a plain wrapped error for transport failures.
func wrapExchangeError(grant string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		te := &TokenError{
			Grant:     grant,
			Body:      string(re.Body),
			ErrorCode: re.ErrorCode,
		}
		if re.Response != nil {
			te.StatusCode = re.Response.StatusCode
		}
		return te
	}
	return fmt.Errorf("%s token request failed: %w", grant, err)
}

// PKCEChallenge holds an RFC 7636 verifier and its S256 challenge.
type PKCEChallenge struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}
