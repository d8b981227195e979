package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"apsmcp/internal/apiclient"
	"apsmcp/internal/config"
	"apsmcp/internal/oauth"
	"apsmcp/internal/tools"
	pkgoauth "apsmcp/pkg/oauth"
)

// Services holds the wired components of one process.
type Services struct {
	Settings config.Config

	// Credentials resolves the application credentials, environment first.
	Credentials config.CredentialSource

	OAuthClient  *pkgoauth.Client
	TokenCache   *oauth.TokenCache
	SessionStore *oauth.FileSessionStore
	Session      *oauth.Session
	Tokens       *oauth.TokenProvider

	Metrics *apiclient.Metrics
	API     *apiclient.Client
	Tools   *tools.Provider
}

// InitializeServices builds every component from cfg.Settings.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}
	settings := *cfg.Settings

	httpClient := &http.Client{Timeout: settings.API.Timeout}

	oauthClient := pkgoauth.NewClient(
		pkgoauth.EndpointsFromBase(settings.Auth.BaseURL),
		pkgoauth.WithHTTPClient(httpClient),
	)

	credentials := config.NewCredentialSource(settings.Auth)
	cache := oauth.NewTokenCache(oauthClient)
	store := oauth.NewFileSessionStore(settings.Auth.SessionFile)
	session := oauth.NewSession(oauthClient, store,
		oauth.WithLoginTimeout(settings.Auth.LoginTimeout),
		oauth.WithPKCE(settings.Auth.PKCEEnabled()),
	)
	tokens := oauth.NewTokenProvider(oauth.CredentialsFunc(credentials), cache, session, settings.Auth.Scope)

	metrics := apiclient.NewMetrics()
	metrics.Registry().MustRegister(collectors.NewGoCollector())
	userAgent := "apsmcp"
	if cfg.Version != "" {
		userAgent += "/" + cfg.Version
	}
	api, err := apiclient.New(settings.API.BaseURL,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithRateLimit(settings.API.RateLimit, settings.API.Burst),
		apiclient.WithMetrics(metrics),
		apiclient.WithUserAgent(userAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	provider := tools.NewProvider(tokens, api, session, tools.Options{
		Credentials:  oauth.CredentialsFunc(credentials),
		Scope:        settings.Auth.Scope,
		CallbackPort: settings.Auth.CallbackPort,
		TreeMaxDepth: settings.Tools.TreeMaxDepth,
		PageLimit:    settings.Tools.PageLimit,
	})

	return &Services{
		Settings:     settings,
		Credentials:  credentials,
		OAuthClient:  oauthClient,
		TokenCache:   cache,
		SessionStore: store,
		Session:      session,
		Tokens:       tokens,
		Metrics:      metrics,
		API:          api,
		Tools:        provider,
	}, nil
}
