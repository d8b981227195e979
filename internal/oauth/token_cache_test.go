package oauth

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgoauth "apsmcp/pkg/oauth"
)

type fakeExchanger struct {
	mu       sync.Mutex
	now      func() time.Time
	lifetime time.Duration
	calls    atomic.Int32
	scopes   []string
	err      error
	gate     chan struct{}
}

func (f *fakeExchanger) ClientCredentials(ctx context.Context, creds pkgoauth.Credentials, scope string) (*pkgoauth.Token, error) {
	n := f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.scopes = append(f.scopes, scope)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &pkgoauth.Token{
		AccessToken: creds.ClientID + "-" + scope + "-" + string(rune('0'+n)),
		ExpiresAt:   f.now().Add(f.lifetime),
		Scope:       scope,
	}, nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTokenCache_DefaultScope(t *testing.T) {
	clock := newTestClock()
	ex := &fakeExchanger{now: clock.Now, lifetime: time.Hour}
	cache := NewTokenCache(ex, WithCacheClock(clock.Now))

	_, err := cache.GetToken(context.Background(), "id", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultScope}, ex.scopes)
}

func TestTokenCache_ScopeKeyed(t *testing.T) {
	clock := newTestClock()
	ex := &fakeExchanger{now: clock.Now, lifetime: time.Hour}
	cache := NewTokenCache(ex, WithCacheClock(clock.Now))
	ctx := context.Background()

	first, err := cache.GetToken(ctx, "id", "secret", "data:read")
	require.NoError(t, err)
	again, err := cache.GetToken(ctx, "id", "secret", "data:read")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, int32(1), ex.calls.Load())

	other, err := cache.GetToken(ctx, "id", "secret", "data:read data:write")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
	assert.Equal(t, int32(2), ex.calls.Load())

	// the slot was replaced, so the first scope needs a new exchange too
	_, err = cache.GetToken(ctx, "id", "secret", "data:read")
	require.NoError(t, err)
	assert.Equal(t, int32(3), ex.calls.Load())
}

func TestTokenCache_ExpiryMargin(t *testing.T) {
	clock := newTestClock()
	ex := &fakeExchanger{now: clock.Now, lifetime: time.Hour}
	cache := NewTokenCache(ex, WithCacheClock(clock.Now))
	ctx := context.Background()

	_, err := cache.GetToken(ctx, "id", "secret", "data:read")
	require.NoError(t, err)

	// stored expiry is issue time + 3600s - 60s = +3540s
	clock.Advance(3540*time.Second - 61*time.Second)
	_, err = cache.GetToken(ctx, "id", "secret", "data:read")
	require.NoError(t, err)
	assert.Equal(t, int32(1), ex.calls.Load(), "61s remaining is served from cache")

	clock.Advance(time.Second)
	_, err = cache.GetToken(ctx, "id", "secret", "data:read")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ex.calls.Load(), "60s remaining triggers a fresh exchange")
}

func TestTokenCache_ExchangeError(t *testing.T) {
	clock := newTestClock()
	ex := &fakeExchanger{
		now: clock.Now,
		err: &pkgoauth.TokenError{Grant: pkgoauth.GrantClientCredentials, StatusCode: http.StatusUnauthorized, Body: `{"error":"invalid_client"}`},
	}
	cache := NewTokenCache(ex, WithCacheClock(clock.Now))

	_, err := cache.GetToken(context.Background(), "id", "bad", "data:read")
	require.Error(t, err)
	assert.True(t, pkgoauth.IsTokenError(err))
	assert.Contains(t, err.Error(), "invalid_client")
}

func TestTokenCache_ConcurrentMissesShareExchange(t *testing.T) {
	clock := newTestClock()
	ex := &fakeExchanger{now: clock.Now, lifetime: time.Hour, gate: make(chan struct{})}
	cache := NewTokenCache(ex, WithCacheClock(clock.Now))

	const callers = 8
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := cache.GetToken(context.Background(), "id", "secret", "data:read")
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}

	require.Eventually(t, func() bool { return ex.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(ex.gate)
	wg.Wait()

	assert.Equal(t, int32(1), ex.calls.Load())
	for _, tok := range tokens {
		assert.Equal(t, tokens[0], tok)
	}
}

func TestTokenCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	clock := newTestClock()
	ex := &fakeExchanger{now: clock.Now, lifetime: time.Hour, gate: make(chan struct{})}
	cache := NewTokenCache(ex, WithCacheClock(clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.GetToken(ctx, "id", "secret", "data:read")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return ex.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		token string
		err   error
	}
	second := make(chan outcome, 1)
	go func() {
		tok, err := cache.GetToken(context.Background(), "id", "secret", "data:read")
		second <- outcome{tok, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(ex.gate)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Equal(t, "id-data:read-1", got.token)
	case <-time.After(time.Second):
		t.Fatal("waiting caller did not return")
	}
	assert.Equal(t, int32(1), ex.calls.Load())

	tok, err := cache.GetToken(context.Background(), "id", "secret", "data:read")
	require.NoError(t, err)
	assert.Equal(t, "id-data:read-1", tok, "the shared exchange still populated the cache")
}
