package health

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/skilladmin/internal/contract"
	"github.com/felixgeelhaar/skilladmin/internal/session"
)

// Pinger is the part of the API client the API check needs.
type Pinger interface {
	Ping(ctx context.Context) (int, error)
	BaseURL() string
}

// APIChecker checks that the admin API answers HTTP at all.
type APIChecker struct {
	api Pinger
}

func NewAPIChecker(p Pinger) *APIChecker {
	return &APIChecker{api: p}
}

func (c *APIChecker) Name() string { return "admin-api" }

func (c *APIChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	status, err := c.api.Ping(ctx)
	latency := time.Since(start)
	if err != nil {
		return Unhealthy("admin API is unreachable").
			WithDetail("url", c.api.BaseURL()).
			WithDetail("error", err.Error()).
			WithLatency(latency)
	}
	if status >= http.StatusInternalServerError {
		return Degraded("admin API answers with server errors").
			WithDetail("url", c.api.BaseURL()).
			WithDetail("status", status).
			WithLatency(latency)
	}
	return Healthy("admin API is reachable").
		WithDetail("url", c.api.BaseURL()).
		WithDetail("status", status).
		WithLatency(latency)
}

// SessionChecker reads the stored session. A missing session is degraded;
// a store that cannot be read is unhealthy.
type SessionChecker struct {
	store   session.Store
	backend string
	now     func() time.Time
}

func NewSessionChecker(store session.Store, backend string) *SessionChecker {
	return &SessionChecker{store: store, backend: backend, now: time.Now}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	sess, err := c.store.Get(ctx)
	switch {
	case stderrors.Is(err, session.ErrNoSession):
		return Degraded("no session stored; run 'skilladmin login'").
			WithDetail("backend", c.backend)
	case err != nil:
		return Unhealthy("session store cannot be read").
			WithDetail("backend", c.backend).
			WithDetail("error", err.Error())
	}

	r := Healthy("session stored").
		WithDetail("backend", c.backend).
		WithDetail("admin", sess.Admin.Email).
		WithDetail("token", session.Fingerprint(sess.Token))
	if claims, err := session.InspectClaims(sess.Token); err == nil && claims.Expired(c.now()) {
		r.Status = StatusDegraded
		r.Message = "stored token has expired; run 'skilladmin login'"
		r.WithDetail("expired_at", claims.ExpiresAt.Format(time.RFC3339))
	}
	return r
}

// ContractChecker loads and validates the bundled OpenAPI document.
func ContractChecker() Checker {
	return Func("contract", func(ctx context.Context) *Result {
		c, err := contract.Load(ctx)
		if err != nil {
			return Unhealthy("bundled API contract is invalid").WithDetail("error", err.Error())
		}
		return Healthy("bundled API contract is valid").
			WithDetail("version", c.Version()).
			WithDetail("endpoints", len(c.Endpoints()))
	})
}
