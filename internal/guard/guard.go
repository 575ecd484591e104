// Package guard tracks whether the operator is logged in and which screen
// the dashboard should show.
//
// The Guard owns the only writes to the session store: login persists the
// token and admin before switching to the dashboard, and logout (explicit or
// after the server rejected the token) clears the store before switching
// back to the login screen. Token expiry is never checked locally; the
// server's 401/403 is the only signal.
package guard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/log"
	"github.com/felixgeelhaar/skilladmin/internal/metrics"
	"github.com/felixgeelhaar/skilladmin/internal/session"
)

// ErrMalformedLogin is returned when a login response lacks a token or an admin id.
var ErrMalformedLogin = errors.New("login response is missing token or admin")

// State is the authentication state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Route is the screen that matches a State.
type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
)

func routeFor(s State) Route {
	if s == Authenticated {
		return RouteDashboard
	}
	return RouteLogin
}

// Transition reasons.
const (
	ReasonStart        = "start"
	ReasonLogin        = "login"
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
)

// Transition is delivered to OnTransition listeners.
type Transition struct {
	From   State
	To     State
	Route  Route
	Reason string
}

// Authenticator exchanges credentials for a login response.
// *api.AuthService implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger used for transitions.
func WithLogger(l *log.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics counts transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// Guard is safe for concurrent use.
type Guard struct {
	store   session.Store
	auth    Authenticator
	logger  *log.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	state     State
	admin     session.Admin
	listeners []func(Transition)
}

// New creates a Guard in the Unauthenticated state. Call Start to load any
// stored session.
func New(store session.Store, auth Authenticator, opts ...Option) *Guard {
	g := &Guard{
		store:  store,
		auth:   auth,
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start reads the store once and sets the initial state. A store failure
// leaves the guard Unauthenticated and is returned.
func (g *Guard) Start(ctx context.Context) (State, error) {
	s, err := g.store.Get(ctx)

	g.mu.Lock()
	from := g.state
	switch {
	case err == nil && s.Token != "":
		g.state = Authenticated
		g.admin = s.Admin
	default:
		g.state = Unauthenticated
		g.admin = session.Admin{}
	}
	t := Transition{From: from, To: g.state, Route: routeFor(g.state), Reason: ReasonStart}
	listeners := g.snapshotLocked()
	g.mu.Unlock()

	g.emit(t, listeners)

	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return t.To, err
	}
	return t.To, nil
}

// Login authenticates, persists the session and moves to the dashboard.
// Any failure leaves the state unchanged.
func (g *Guard) Login(ctx context.Context, email, password string) (session.Admin, error) {
	resp, err := g.auth.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return session.Admin{}, err
	}
	if resp == nil || strings.TrimSpace(resp.Token) == "" || resp.Admin == nil || strings.TrimSpace(resp.Admin.ID) == "" {
		return session.Admin{}, ErrMalformedLogin
	}

	s := session.Session{Token: resp.Token, Admin: *resp.Admin}

	g.mu.Lock()
	if err := g.store.Set(ctx, s); err != nil {
		g.mu.Unlock()
		return session.Admin{}, fmt.Errorf("persist session: %w", err)
	}
	from := g.state
	g.state = Authenticated
	g.admin = s.Admin
	listeners := g.snapshotLocked()
	g.mu.Unlock()

	g.emit(Transition{From: from, To: Authenticated, Route: RouteDashboard, Reason: ReasonLogin}, listeners)
	return s.Admin, nil
}

// Logout clears the store and returns to the login screen. It is safe to
// call while already logged out. If the store cannot be cleared the state
// is left alone.
func (g *Guard) Logout(ctx context.Context) error {
	return g.logout(ctx, ReasonLogout, false)
}

// HandleUnauthorized drops the session after the server rejected it.
// Its signature matches api.UnauthorizedHandler. The state changes even
// when the store cannot be cleared, since the token is known to be dead.
func (g *Guard) HandleUnauthorized(ctx context.Context, cause error) {
	g.logger.WithContext(ctx).WithError(cause).Warn("session rejected by server")
	if err := g.logout(ctx, ReasonUnauthorized, true); err != nil {
		g.logger.WithContext(ctx).WithError(err).Error("failed to clear rejected session")
	}
}

func (g *Guard) logout(ctx context.Context, reason string, force bool) error {
	g.mu.Lock()
	err := g.store.Clear(ctx)
	if err != nil && !force {
		g.mu.Unlock()
		return fmt.Errorf("clear session: %w", err)
	}
	from := g.state
	g.state = Unauthenticated
	g.admin = session.Admin{}
	listeners := g.snapshotLocked()
	g.mu.Unlock()

	g.emit(Transition{From: from, To: Unauthenticated, Route: RouteLogin, Reason: reason}, listeners)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Route returns the screen for the current state.
func (g *Guard) Route() Route {
	return routeFor(g.State())
}

// Admin returns the logged-in admin, if any.
func (g *Guard) Admin() (session.Admin, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admin, g.state == Authenticated
}

// OnTransition registers fn to run after every transition, outside the
// guard's lock.
func (g *Guard) OnTransition(fn func(Transition)) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

func (g *Guard) snapshotLocked() []func(Transition) {
	return slices.Clone(g.listeners)
}

func (g *Guard) emit(t Transition, listeners []func(Transition)) {
	g.metrics.ObserveTransition(t.From.String(), t.To.String(), t.Reason)
	g.logger.Debug("session transition",
		"from", t.From.String(),
		"to", t.To.String(),
		"route", string(t.Route),
		"reason", t.Reason,
	)
	for _, fn := range listeners {
		fn(t)
	}
}
