package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apsmcp/pkg/logging"

	"golang.org/x/time/rate"
)

// DefaultTimeout is the per-request HTTP timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// Client issues requests against a single API host.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit paces requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for baseURL, e.g. https://developer.api.autodesk.com.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("API base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "apsmcp",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Host returns the only host requests may target.
func (c *Client) Host() string {
	return c.baseURL.Host
}

// resolve maps a caller path onto the API host.
func (c *Client) resolve(path string) (*url.URL, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}

	if u.Host != "" {
		if !strings.EqualFold(u.Host, c.baseURL.Host) || (u.Scheme != "" && !strings.EqualFold(u.Scheme, c.baseURL.Scheme)) {
			return nil, &HostMismatchError{Host: u.Host, Allowed: c.baseURL.Host}
		}
		if u.Scheme == "" {
			u.Scheme = c.baseURL.Scheme
		}
		return u, nil
	}
	if u.Scheme != "" {
		return nil, &HostMismatchError{Host: u.Scheme + ":", Allowed: c.baseURL.Host}
	}

	joined := c.baseURL.String() + "/" + strings.TrimPrefix(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		joined += "?" + u.RawQuery
	}
	return url.Parse(joined)
}

// CheckTarget reports whether path may be requested, without sending
// anything. Callers use it to refuse a request before acquiring a token.
func (c *Client) CheckTarget(path string) error {
	_, err := c.target(path)
	return err
}

func (c *Client) target(path string) (*url.URL, error) {
	u, err := c.resolve(path)
	if err != nil && IsHostMismatch(err) {
		c.metrics.reject("host_mismatch")
		logging.Warn("APIClient", "Rejected request to foreign host: %v", err)
	}
	return u, err
}

// Do sends req with the bearer token attached. Host validation happens
// before the token is used.
func (c *Client) Do(ctx context.Context, req Request, token string) (*Result, error) {
	method := req.method()

	target, err := c.target(req.Path)
	if err != nil {
		return nil, err
	}

	if len(req.Query) > 0 {
		q := target.Query()
		encodeQuery(q, req.Query)
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if hasBody(method) && req.Body != nil {
		data, err := encodeBody(req.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range req.Headers {
		if strings.EqualFold(k, "Authorization") {
			continue
		}
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.observe(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, req.Path, err)
	}

	logging.Debug("APIClient", "%s %s -> %d (%d bytes)", method, target.Path, resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       req.Path,
			Body:       string(respBody),
		}
	}

	return newResult(resp.StatusCode, resp.Header.Get("Content-Type"), respBody), nil
}
