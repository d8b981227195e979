package config

import (
	"os"

	pkgoauth "apsmcp/pkg/oauth"
)

// CredentialSource resolves the application's client credentials.
type CredentialSource func() (pkgoauth.Credentials, error)

// NewCredentialSource returns a source that prefers the environment over the
// configured values and reports a ConfigurationError when either half is missing.
func NewCredentialSource(auth AuthConfig) CredentialSource {
	return func() (pkgoauth.Credentials, error) {
		creds := pkgoauth.Credentials{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
		}
		if v := os.Getenv(EnvClientID); v != "" {
			creds.ClientID = v
		}
		if v := os.Getenv(EnvClientSecret); v != "" {
			creds.ClientSecret = v
		}

		if !creds.IsComplete() {
			return pkgoauth.Credentials{}, ConfigurationError{
				Field:     "auth.clientID/auth.clientSecret",
				ErrorType: ErrorTypeCredentials,
				Message:   "client credentials are not configured",
				Suggestions: []string{
					"export " + EnvClientID + " and " + EnvClientSecret,
					"or set auth.clientID and auth.clientSecret in ~/.config/apsmcp/config.yaml",
				},
			}
		}
		return creds, nil
	}
}
