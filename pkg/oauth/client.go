package oauth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultHTTPTimeout is the default timeout for token endpoint requests.
const DefaultHTTPTimeout = 30 * time.Second

// Client performs token endpoint operations. It holds no token state and is
// safe for concurrent use.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides time.Now, used when a response carries no expiry.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new OAuth client for the given endpoints.
func NewClient(endpoints Endpoints, opts ...ClientOption) *Client {
	c := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *Client) config(creds Credentials, redirectURI, scope string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.endpoints.AuthURL,
			TokenURL:  c.endpoints.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: redirectURI,
		Scopes:      strings.Fields(scope),
	}
}

// ClientCredentials exchanges the application credentials for an app token.
func (c *Client) ClientCredentials(ctx context.Context, creds Credentials, scope string) (*Token, error) {
	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.endpoints.TokenURL,
		Scopes:       strings.Fields(scope),
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := cfg.Token(c.httpContext(ctx))
	if err != nil {
		c.logger.Debug("Client credentials exchange failed", "error", err)
		return nil, wrapExchangeError(GrantClientCredentials, err)
	}

	return fromOAuth2(tok, scope, c.now()), nil
}

// AuthorizationURL builds the browser URL for the authorization-code flow.
// A nil pkce sends no code_challenge.
func (c *Client) AuthorizationURL(creds Credentials, redirectURI, scope, state string, pkce *PKCEChallenge) string {
	cfg := c.config(creds, redirectURI, scope)

	var opts []oauth2.AuthCodeOption
	if pkce != nil {
		opts = append(opts, oauth2.S256ChallengeOption(pkce.CodeVerifier))
	}

	return cfg.AuthCodeURL(state, opts...)
}

// ExchangeCode trades an authorization code for a user token pair.
func (c *Client) ExchangeCode(ctx context.Context, creds Credentials, redirectURI, scope, code string, pkce *PKCEChallenge) (*Token, error) {
	cfg := c.config(creds, redirectURI, scope)

	var opts []oauth2.AuthCodeOption
	if pkce != nil {
		opts = append(opts, oauth2.VerifierOption(pkce.CodeVerifier))
	}

	tok, err := cfg.Exchange(c.httpContext(ctx), code, opts...)
	if err != nil {
		return nil, wrapExchangeError(GrantAuthorizationCode, err)
	}

	return fromOAuth2(tok, scope, c.now()), nil
}

// RefreshToken obtains a new token pair from a refresh token. When the
// provider does not rotate the refresh token, the old one is carried over.
func (c *Client) RefreshToken(ctx context.Context, creds Credentials, refreshToken, scope string) (*Token, error) {
	cfg := c.config(creds, "", scope)

	// An empty access token forces the source to hit the token endpoint.
	src := cfg.TokenSource(c.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, wrapExchangeError(GrantRefreshToken, err)
	}

	t := fromOAuth2(tok, scope, c.now())
	if t.RefreshToken == "" {
		t.RefreshToken = refreshToken
	}
	return t, nil
}
