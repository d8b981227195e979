package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenRequest struct {
	form     url.Values
	user     string
	password string
}

func newTokenServer(t *testing.T, status int, response any) (*httptest.Server, *[]tokenRequest) {
	t.Helper()
	var requests []tokenRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		user, pass, _ := r.BasicAuth()
		requests = append(requests, tokenRequest{form: r.PostForm, user: user, password: pass})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func testCreds() Credentials {
	return Credentials{ClientID: "app-id", ClientSecret: "app-secret"}
}

func TestEndpointsFromBase(t *testing.T) {
	ep := EndpointsFromBase("https://auth.example.com/authentication/v2/")
	assert.Equal(t, "https://auth.example.com/authentication/v2/authorize", ep.AuthURL)
	assert.Equal(t, "https://auth.example.com/authentication/v2/token", ep.TokenURL)
}

func TestClient_ClientCredentials(t *testing.T) {
	t.Run("exchanges credentials", func(t *testing.T) {
		server, requests := newTokenServer(t, http.StatusOK, map[string]any{
			"access_token": "app-token",
			"token_type":   "Bearer",
			"expires_in":   3599,
		})

		c := NewClient(EndpointsFromBase(server.URL), WithHTTPClient(server.Client()))
		tok, err := c.ClientCredentials(context.Background(), testCreds(), "data:read data:write")
		require.NoError(t, err)

		assert.Equal(t, "app-token", tok.AccessToken)
		assert.Equal(t, "data:read data:write", tok.Scope)
		assert.InDelta(t, 3599, time.Until(tok.ExpiresAt).Seconds(), 5)

		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, GrantClientCredentials, req.form.Get("grant_type"))
		assert.Equal(t, "data:read data:write", req.form.Get("scope"))
		assert.Equal(t, "app-id", req.user)
		assert.Equal(t, "app-secret", req.password)
	})

	t.Run("non-success carries status and body", func(t *testing.T) {
		server, _ := newTokenServer(t, http.StatusUnauthorized, map[string]any{
			"error":             "invalid_client",
			"error_description": "The client_id specified does not have access to the api product",
		})

		c := NewClient(EndpointsFromBase(server.URL), WithHTTPClient(server.Client()))
		_, err := c.ClientCredentials(context.Background(), testCreds(), "data:read")
		require.Error(t, err)

		var te *TokenError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
		assert.Equal(t, GrantClientCredentials, te.Grant)
		assert.Contains(t, te.Body, "does not have access")
		assert.Contains(t, err.Error(), "status 401")
		assert.True(t, IsTokenError(err))
	})

	t.Run("missing expires_in uses default lifetime", func(t *testing.T) {
		server, _ := newTokenServer(t, http.StatusOK, map[string]any{
			"access_token": "app-token",
			"token_type":   "Bearer",
		})
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		c := NewClient(EndpointsFromBase(server.URL), WithHTTPClient(server.Client()), WithClock(func() time.Time { return fixed }))
		tok, err := c.ClientCredentials(context.Background(), testCreds(), "data:read")
		require.NoError(t, err)
		assert.Equal(t, fixed.Add(DefaultTokenLifetime), tok.ExpiresAt)
	})
}

func TestClient_AuthorizationURL(t *testing.T) {
	c := NewClient(EndpointsFromBase("https://auth.example.com/v2"))
	pkce := GeneratePKCE()

	raw := c.AuthorizationURL(testCreds(), "http://localhost:8910/callback", "data:read", "state-1", pkce)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/v2/authorize", u.Path)
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8910/callback", q.Get("redirect_uri"))
	assert.Equal(t, "data:read", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, pkce.CodeChallenge, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))

	plain := c.AuthorizationURL(testCreds(), "http://localhost:8910/callback", "data:read", "s", nil)
	assert.NotContains(t, plain, "code_challenge")
}

func TestClient_ExchangeCode(t *testing.T) {
	server, requests := newTokenServer(t, http.StatusOK, map[string]any{
		"access_token":  "user-token",
		"refresh_token": "refresh-1",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})

	c := NewClient(EndpointsFromBase(server.URL), WithHTTPClient(server.Client()))
	pkce := GeneratePKCE()
	tok, err := c.ExchangeCode(context.Background(), testCreds(), "http://localhost:8910/callback", "data:read", "the-code", pkce)
	require.NoError(t, err)

	assert.Equal(t, "user-token", tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)

	form := (*requests)[0].form
	assert.Equal(t, GrantAuthorizationCode, form.Get("grant_type"))
	assert.Equal(t, "the-code", form.Get("code"))
	assert.Equal(t, "http://localhost:8910/callback", form.Get("redirect_uri"))
	assert.Equal(t, pkce.CodeVerifier, form.Get("code_verifier"))
}

func TestClient_RefreshToken(t *testing.T) {
	t.Run("keeps old refresh token when not rotated", func(t *testing.T) {
		server, requests := newTokenServer(t, http.StatusOK, map[string]any{
			"access_token": "user-token-2",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})

		c := NewClient(EndpointsFromBase(server.URL), WithHTTPClient(server.Client()))
		tok, err := c.RefreshToken(context.Background(), testCreds(), "refresh-1", "data:read")
		require.NoError(t, err)

		assert.Equal(t, "user-token-2", tok.AccessToken)
		assert.Equal(t, "refresh-1", tok.RefreshToken)
		form := (*requests)[0].form
		assert.Equal(t, GrantRefreshToken, form.Get("grant_type"))
		assert.Equal(t, "refresh-1", form.Get("refresh_token"))
	})

	t.Run("failure is a TokenError", func(t *testing.T) {
		server, _ := newTokenServer(t, http.StatusBadRequest, map[string]any{
			"error": "invalid_grant",
		})

		c := NewClient(EndpointsFromBase(server.URL), WithHTTPClient(server.Client()))
		_, err := c.RefreshToken(context.Background(), testCreds(), "stale", "data:read")

		var te *TokenError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusBadRequest, te.StatusCode)
		assert.Equal(t, GrantRefreshToken, te.Grant)
	})
}
