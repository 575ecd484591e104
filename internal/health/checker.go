// Package health runs the diagnostics behind `skilladmin doctor`.
//
// Each Checker verifies one dependency of the admin console (the config,
// the session store, the admin API, the bundled contract) and reports a
// Result. A Manager runs them in parallel with a per-check timeout:
//
//	m := health.NewManager()
//	m.AddChecker(health.NewAPIChecker(client))
//	m.AddChecker(health.NewSessionChecker(store, "file"))
//	reports := m.Check(ctx)
//	if m.OverallStatus(reports) == health.StatusUnhealthy { ... }
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency. Check must respect ctx.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "admin-api".
	Name() string
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	// StatusHealthy means the dependency works.
	StatusHealthy Status = "healthy"

	// StatusDegraded means commands will run but something needs
	// attention, e.g. no session is stored yet.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means commands that need the dependency will fail.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is what a Checker found.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration  `json:"latency" yaml:"latency"`
}

// NewResult creates a result with an empty details map.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns r for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns r for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}

// funcChecker adapts a function to Checker.
type funcChecker struct {
	name string
	fn   func(ctx context.Context) *Result
}

func (f funcChecker) Name() string                      { return f.name }
func (f funcChecker) Check(ctx context.Context) *Result { return f.fn(ctx) }

// Func returns a Checker named name that calls fn.
func Func(name string, fn func(ctx context.Context) *Result) Checker {
	return funcChecker{name: name, fn: fn}
}

// Static returns a Checker that always reports r. It is used for failures
// found before the checks run, such as an invalid config.
func Static(name string, r *Result) Checker {
	return Func(name, func(context.Context) *Result { return r })
}
