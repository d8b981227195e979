package oauth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"apsmcp/pkg/logging"
	pkgoauth "apsmcp/pkg/oauth"
)

// DefaultScope is requested when the caller passes no scope.
const DefaultScope = "data:read"

// ExpiryMargin is subtracted from the issued lifetime and also required as
// remaining validity before a cached token is served.
const ExpiryMargin = 60 * time.Second

// CredentialsExchanger performs the client-credentials grant.
type CredentialsExchanger interface {
	ClientCredentials(ctx context.Context, creds pkgoauth.Credentials, scope string) (*pkgoauth.Token, error)
}

type cachedToken struct {
	token     string
	clientID  string
	scope     string
	expiresAt time.Time
}

// TokenCache holds a single client-credentials token. A request for a
// different scope replaces the slot.
type TokenCache struct {
	exchanger CredentialsExchanger
	now       func() time.Time

	mu    sync.Mutex
	slot  *cachedToken
	group singleflight.Group
}

// CacheOption configures a TokenCache.
type CacheOption func(*TokenCache)

// WithCacheClock overrides time.Now.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

// NewTokenCache creates an empty cache.
func NewTokenCache(exchanger CredentialsExchanger, opts ...CacheOption) *TokenCache {
	c := &TokenCache{
		exchanger: exchanger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetToken returns an application token for scope, exchanging credentials
// when the cached one is missing, for another scope or about to expire.
// Concurrent misses for the same credentials and scope share one exchange.
// The shared exchange ignores cancellation of the caller that started it; a
// caller that gives up returns ctx.Err() while the others keep waiting.
func (c *TokenCache) GetToken(ctx context.Context, clientID, clientSecret, scope string) (string, error) {
	if scope == "" {
		scope = DefaultScope
	}

	if tok, ok := c.cached(clientID, scope); ok {
		return tok, nil
	}

	exchangeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(clientID+"\x00"+scope, func() (any, error) {
		// Double-check after acquiring the singleflight lock
		if tok, ok := c.cached(clientID, scope); ok {
			return tok, nil
		}

		creds := pkgoauth.Credentials{ClientID: clientID, ClientSecret: clientSecret}
		issued, err := c.exchanger.ClientCredentials(exchangeCtx, creds, scope)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.slot = &cachedToken{
			token:     issued.AccessToken,
			clientID:  clientID,
			scope:     scope,
			expiresAt: issued.ExpiresAt.Add(-ExpiryMargin),
		}
		c.mu.Unlock()

		logging.Debug("TokenCache", "Cached application token for scope %q, valid until %s",
			scope, issued.ExpiresAt.Add(-ExpiryMargin).Format(time.RFC3339))
		return issued.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			logging.Debug("TokenCache", "Shared in-flight token exchange for scope %q", scope)
		}
		return res.Val.(string), nil
	}
}

func (c *TokenCache) cached(clientID, scope string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot == nil || c.slot.scope != scope || c.slot.clientID != clientID {
		return "", false
	}
	if c.slot.expiresAt.Sub(c.now()) <= ExpiryMargin {
		return "", false
	}
	return c.slot.token, true
}

