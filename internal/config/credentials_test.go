package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialSource(t *testing.T) {
	t.Run("uses configured values", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "")

		creds, err := NewCredentialSource(AuthConfig{ClientID: "id", ClientSecret: "secret"})()
		require.NoError(t, err)
		assert.Equal(t, "id", creds.ClientID)
		assert.Equal(t, "secret", creds.ClientSecret)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "env-secret")

		creds, err := NewCredentialSource(AuthConfig{ClientID: "id", ClientSecret: "secret"})()
		require.NoError(t, err)
		assert.Equal(t, "env-id", creds.ClientID)
		assert.Equal(t, "env-secret", creds.ClientSecret)
	})

	t.Run("missing secret is a configuration error", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "")

		_, err := NewCredentialSource(AuthConfig{ClientID: "id"})()
		require.Error(t, err)

		var ce ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, ErrorTypeCredentials, ce.ErrorType)
		assert.NotEmpty(t, ce.Suggestions)
	})
}
