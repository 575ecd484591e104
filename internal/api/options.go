package api

import (
	"context"
	"net/http"
	"time"

	"github.com/felixgeelhaar/skilladmin/internal/log"
	"github.com/felixgeelhaar/skilladmin/internal/metrics"
)

// DefaultTimeout bounds every request unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

// RouteMatcher resolves a concrete request path to a contract route template.
type RouteMatcher interface {
	Match(method, path string) (route string, ok bool)
}

// UnauthorizedHandler is called after a 401/403 on a request that carried
// a session token. The error is still returned to the caller.
type UnauthorizedHandler func(ctx context.Context, err error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request debug records.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithContract enables strict mode: requests outside the contract fail
// with ErrNotInContract before anything is sent.
func WithContract(m RouteMatcher) Option {
	return func(c *Client) {
		c.contract = m
	}
}

// WithUnauthorizedHandler installs the centralized 401/403 handler.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}
