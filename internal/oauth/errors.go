package oauth

import (
	"errors"
	"fmt"
	"html/template"
)

// ErrLoginTimeout is returned by Login when no callback arrives in time.
var ErrLoginTimeout = errors.New("timed out waiting for the authorization callback")

// ErrNoSession is returned by SessionStore.Load when nothing is persisted.
var ErrNoSession = errors.New("no interactive session")

// AuthorizationError is a failed authorization callback. Description holds
// the provider text as received; Error() escapes it since it is attacker
// controllable and ends up in HTML and chat transcripts.
type AuthorizationError struct {
	Code        string
	Description string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	msg := "authorization failed: " + template.HTMLEscapeString(e.Code)
	if e.Description != "" {
		msg += ": " + template.HTMLEscapeString(e.Description)
	}
	return msg
}

// IsAuthorizationError reports whether err is or wraps an *AuthorizationError.
func IsAuthorizationError(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// BindError reports that the callback listener could not bind its port.
type BindError struct {
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("failed to start callback listener on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying listen error.
func (e *BindError) Unwrap() error {
	return e.Err
}
