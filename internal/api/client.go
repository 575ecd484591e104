// Package api is the authenticated client for the skills admin REST API.
//
// Every request reads the session token from a session.Store and sends it
// in the "token" header. The client never writes the store; logging out on
// a rejected session is left to the UnauthorizedHandler.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/skilladmin/internal/log"
	"github.com/felixgeelhaar/skilladmin/internal/metrics"
	"github.com/felixgeelhaar/skilladmin/internal/session"
	"github.com/felixgeelhaar/skilladmin/internal/telemetry"
	"github.com/felixgeelhaar/skilladmin/internal/version"
)

// Header names sent on every request.
const (
	HeaderToken     = "token"
	HeaderRequestID = "X-Request-ID"
)

const maxResponseBytes = 16 << 20

// Client is the admin API client.
type Client struct {
	baseURL    string
	store      session.Store
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
	metrics    *metrics.Metrics
	contract   RouteMatcher
	userAgent  string

	mu             sync.RWMutex
	onUnauthorized UnauthorizedHandler
}

// New creates a client for baseURL that reads its token from store.
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("api: session store is required")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api: base URL %q must be an absolute http(s) URL", baseURL)
	}
	u.RawQuery, u.Fragment = "", ""

	c := &Client{
		baseURL:   strings.TrimSuffix(u.String(), "/"),
		store:     store,
		timeout:   DefaultTimeout,
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: telemetry.Transport(nil),
		}
	}
	if c.logger == nil {
		c.logger = log.Nop()
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUnauthorizedHandler replaces the 401/403 handler after construction.
// The session guard needs the client before it can hand out its handler.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.mu.Lock()
	c.onUnauthorized = h
	c.mu.Unlock()
}

func (c *Client) unauthorizedHandler() UnauthorizedHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onUnauthorized
}

// request describes one call. Body is JSON-encoded unless Form is set.
type request struct {
	op     string
	method string
	route  string
	path   string
	query  url.Values
	body   any
	form   *Multipart
	out    any
}

func (c *Client) do(ctx context.Context, r request) (err error) {
	route := r.route
	if route == "" {
		route = r.path
		if i := strings.IndexByte(route, '?'); i >= 0 {
			route = route[:i]
		}
	}
	if c.contract != nil {
		tmpl, ok := c.contract.Match(r.method, r.path)
		if !ok {
			c.metrics.ObserveRequestError(r.method, route, "contract")
			return fmt.Errorf("%w: %s %s", ErrNotInContract, r.method, r.path)
		}
		route = tmpl
	}

	ctx, span := telemetry.StartAPISpan(ctx, r.op, r.method, route)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()
	}()

	token, hasToken, err := session.Token(ctx, c.store)
	if err != nil {
		c.metrics.ObserveRequestError(r.method, route, "store")
		var se *session.StoreError
		if stderrors.As(err, &se) {
			return se
		}
		return &session.StoreError{Op: "get", Err: err}
	}

	target := c.baseURL + ensureLeadingSlash(r.path)
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + r.query.Encode()
	}

	body, contentType, err := r.encodeBody()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		if closer, ok := body.(io.Closer); ok {
			_ = closer.Close()
		}
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if hasToken {
		req.Header.Set(HeaderToken, token)
	}

	logger := c.logger.WithContext(log.ContextWithRequestID(ctx, requestID))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(r.method, route, 0, time.Since(start))
		c.metrics.ObserveRequestError(r.method, route, "transport")
		logger.Debug("api request failed",
			"method", r.method,
			"route", route,
			"duration_ms", time.Since(start).Milliseconds(),
			"token_fp", session.Fingerprint(token),
			"error", err.Error(),
		)
		return &TransportError{Op: r.method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(r.method, route, resp.StatusCode, elapsed)
	logger.Debug("api request",
		"method", r.method,
		"route", route,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
		"token_fp", session.Fingerprint(token),
	)
	if err != nil {
		c.metrics.ObserveRequestError(r.method, route, "transport")
		return &TransportError{Op: r.method, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveRequestError(r.method, route, "status")
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data),
			Body:       data,
		}
		if hasToken && IsUnauthorized(statusErr) {
			if h := c.unauthorizedHandler(); h != nil {
				h(ctx, statusErr)
			}
		}
		return statusErr
	}

	if r.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		c.metrics.ObserveRequestError(r.method, route, "decode")
		return &DecodeError{Err: err, Body: data}
	}
	return nil
}

func (r request) encodeBody() (io.Reader, string, error) {
	switch {
	case r.form != nil:
		return r.form.open()
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{op: "get", method: http.MethodGet, path: path, query: query, out: out})
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{op: "post", method: http.MethodPost, path: path, body: body, out: out})
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{op: "put", method: http.MethodPut, path: path, body: body, out: out})
}

// Delete sends a DELETE request and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{op: "delete", method: http.MethodDelete, path: path, out: out})
}

// PostMultipart streams form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	if form == nil {
		form = NewMultipart()
	}
	return c.do(ctx, request{op: "post_multipart", method: http.MethodPost, path: path, form: form, out: out})
}
