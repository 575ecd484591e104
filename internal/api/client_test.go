package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/skilladmin/internal/contract"
	"github.com/felixgeelhaar/skilladmin/internal/log"
	"github.com/felixgeelhaar/skilladmin/internal/metrics"
	"github.com/felixgeelhaar/skilladmin/internal/session"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// capture records outgoing requests and answers 200 {}.
type capture struct {
	reqs []*http.Request
}

func (c *capture) client() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		c.reqs = append(c.reqs, r)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    r,
		}, nil
	})}
}

func (c *capture) last(t *testing.T) *http.Request {
	t.Helper()
	require.NotEmpty(t, c.reqs, "no request was sent")
	return c.reqs[len(c.reqs)-1]
}

type failingStore struct{ err error }

func (f failingStore) Set(context.Context, session.Session) error   { return f.err }
func (f failingStore) Get(context.Context) (session.Session, error) { return session.Session{}, f.err }
func (f failingStore) Clear(context.Context) error                  { return f.err }

func TestTokenHeaderInjection(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.Session{Token: "tok1", Admin: session.Admin{ID: "1"}}))

	rec := &capture{}
	c, err := New("https://api.example.test", store, WithHTTPClient(rec.client()))
	require.NoError(t, err)

	require.NoError(t, c.Get(ctx, "/admin/users", nil, nil))
	req := rec.last(t)
	assert.Equal(t, "https://api.example.test/admin/users", req.URL.String())
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "tok1", req.Header.Get("token"))
	assert.Len(t, req.Header.Values("token"), 1)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, c.Get(ctx, "/admin/users", nil, nil))
	_, present := rec.last(t).Header["Token"]
	assert.False(t, present, "token header must be absent after clear")
}

func TestNoTokenHeaderWhenEmpty(t *testing.T) {
	rec := &capture{}
	c, err := New("https://api.example.test/", session.NewMemoryStore(), WithHTTPClient(rec.client()))
	require.NoError(t, err)

	require.NoError(t, c.Post(context.Background(), "admin/login", map[string]string{"email": "a"}, nil))
	req := rec.last(t)
	assert.Equal(t, "https://api.example.test/admin/login", req.URL.String())
	assert.Empty(t, req.Header.Get("token"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestStandardHeaders(t *testing.T) {
	rec := &capture{}
	c, err := New("https://api.example.test", session.NewMemoryStore(),
		WithHTTPClient(rec.client()), WithUserAgent("skilladmin/test"))
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), "/a", nil, nil))
	require.NoError(t, c.Get(context.Background(), "/b", nil, nil))

	first, second := rec.reqs[0], rec.reqs[1]
	assert.Equal(t, "skilladmin/test", first.Header.Get("User-Agent"))
	assert.NotEmpty(t, first.Header.Get(HeaderRequestID))
	assert.NotEqual(t, first.Header.Get(HeaderRequestID), second.Header.Get(HeaderRequestID))
	assert.Empty(t, first.Header.Get("Content-Type"), "GET has no body")
}

func TestStoreFailureBlocksRequest(t *testing.T) {
	rec := &capture{}
	boom := errors.New("redis: connection refused")
	c, err := New("https://api.example.test", failingStore{err: boom}, WithHTTPClient(rec.client()))
	require.NoError(t, err)

	err = c.Get(context.Background(), "/admin/get/users", nil, nil)
	var se *session.StoreError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.reqs, "request must not be sent")
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New("https://api.example.test", nil)
	assert.Error(t, err)

	for _, bad := range []string{"", "api.example.test", "ftp://api.example.test", "https://"} {
		_, err := New(bad, session.NewMemoryStore())
		assert.Error(t, err, bad)
	}

	c, err := New("http://localhost:8080/base/", session.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/base", c.BaseURL())
}

func TestStatusErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"msg wins", `{"msg":"from msg","message":"from message","error":"from error"}`, "from msg"},
		{"message", `{"message":"from message","error":"from error"}`, "from message"},
		{"error string", `{"error":"from error"}`, "from error"},
		{"error object ignored", `{"error":{"code":1}}`, ""},
		{"not json", `<html>bad gateway</html>`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := New(srv.URL, session.NewMemoryStore())
			require.NoError(t, err)

			err = c.Get(context.Background(), "/x", nil, nil)
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusBadRequest, se.StatusCode)
			assert.Equal(t, tt.want, se.Message)
			assert.Equal(t, tt.body, string(se.Body))
			assert.False(t, IsUnauthorized(err))
		})
	}
}

func TestUnauthorizedHandler(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusUnauthorized)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = io.WriteString(w, `{"msg":"Token expired"}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	store := session.NewMemoryStore()

	var calls atomic.Int32
	c, err := New(srv.URL, store, WithUnauthorizedHandler(func(ctx context.Context, err error) {
		calls.Add(1)
		assert.True(t, IsUnauthorized(err))
	}))
	require.NoError(t, err)

	// Without a token the handler stays quiet: there is no session to reject.
	err = c.Get(ctx, "/admin/get/users", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, store.Set(ctx, session.Session{Token: "old", Admin: session.Admin{ID: "1"}}))
	err = c.Get(ctx, "/admin/get/users", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Token expired", Message(err, "fallback"))
	assert.Equal(t, int32(1), calls.Load())

	status.Store(http.StatusForbidden)
	err = c.Get(ctx, "/admin/get/users", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(2), calls.Load())

	// The client never touches the store itself.
	tok, ok, err := session.Token(ctx, store)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "old", tok)
}

func TestSetUnauthorizedHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), session.Session{Token: "t", Admin: session.Admin{ID: "1"}}))
	c, err := New(srv.URL, store)
	require.NoError(t, err)

	called := false
	c.SetUnauthorizedHandler(func(context.Context, error) { called = true })
	_ = c.Get(context.Background(), "/", nil, nil)
	assert.True(t, called)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, session.NewMemoryStore())
	require.NoError(t, err)

	err = c.Get(context.Background(), "/admin/get/users", nil, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Op)
	assert.Equal(t, url+"/admin/get/users", te.URL)
	assert.Error(t, errors.Unwrap(err))
	assert.Equal(t, "Failed to fetch users", Message(err, "Failed to fetch users"))
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"users": [`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, session.NewMemoryStore())
	require.NoError(t, err)

	var out map[string]any
	err = c.Get(context.Background(), "/admin/get/users", nil, &out)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, `{"users": [`, string(de.Body))
}

func TestEmptyBodyIsNotDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL, session.NewMemoryStore())
	require.NoError(t, err)

	var out map[string]any
	assert.NoError(t, c.Delete(context.Background(), "/x", &out))
	assert.Nil(t, out)
}

func TestStrictContract(t *testing.T) {
	ct, err := contract.Load(context.Background())
	require.NoError(t, err)

	rec := &capture{}
	c, err := New("https://api.example.test", session.NewMemoryStore(),
		WithHTTPClient(rec.client()), WithContract(ct))
	require.NoError(t, err)

	err = c.Get(context.Background(), "/admin/users", nil, nil)
	assert.ErrorIs(t, err, ErrNotInContract)
	assert.Empty(t, rec.reqs)

	_, err = c.Users().Delete(context.Background(), "64f0")
	require.NoError(t, err)
	assert.Equal(t, "/admin/delete/user/64f0", rec.last(t).URL.Path)
}

func TestEveryRouteIsInContract(t *testing.T) {
	ct, err := contract.Load(context.Background())
	require.NoError(t, err)

	routes := Routes()
	assert.Len(t, routes, len(ct.Endpoints()))
	for _, r := range routes {
		tmpl, ok := ct.Match(r[0], r[1])
		assert.True(t, ok, "%s %s missing from contract", r[0], r[1])
		assert.Equal(t, r[1], tmpl)
	}
}

func TestMetricsAndLogging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"skills":[],"totalSkills":0}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.Session{Token: "very-secret-token", Admin: session.Admin{ID: "1"}}))

	var buf bytes.Buffer
	logger := log.New(log.Config{Level: log.LevelDebug, Format: log.FormatJSON, Output: log.NewOutput(&buf)})
	_, m := metrics.NewRegistry()

	c, err := New(srv.URL, store, WithLogger(logger), WithMetrics(m))
	require.NoError(t, err)

	_, err = c.Skills().List(ctx, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/admin/get/skills", "2xx")))

	out := buf.String()
	assert.Contains(t, out, `"route":"/admin/get/skills"`)
	assert.Contains(t, out, session.Fingerprint("very-secret-token"))
	assert.Contains(t, out, `"request_id"`)
	assert.NotContains(t, out, "very-secret-token")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil, "x"))
	assert.Equal(t, "User exists", Message(&StatusError{StatusCode: 409, Message: "User exists"}, "Failed to save user"))
	assert.Equal(t, "Failed to save user", Message(&StatusError{StatusCode: 500}, "Failed to save user"))
	assert.Equal(t, "Failed to save user", Message(&DecodeError{Err: errors.New("x")}, "Failed to save user"))
	assert.Contains(t, Message(ValidatePage(-1, 10), "x"), "page must be >= 0")
}
