package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds each check.
const DefaultTimeout = 5 * time.Second

// Report is one checker's result, tagged with its name.
type Report struct {
	Name   string `json:"name" yaml:"name"`
	Result `yaml:",inline"`
}

// Manager runs checkers in parallel and aggregates their results.
type Manager struct {
	checkers []Checker
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewManager returns a Manager using DefaultTimeout.
func NewManager() *Manager {
	return &Manager{timeout: DefaultTimeout}
}

// WithTimeout sets the per-check timeout.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// AddChecker registers a checker. Reports keep registration order.
func (m *Manager) AddChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// Count returns the number of registered checkers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checkers)
}

// Check runs every checker concurrently, each under its own timeout. A
// checker that returns nil or ignores its deadline is reported unhealthy.
func (m *Manager) Check(ctx context.Context) []Report {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	timeout := m.timeout
	m.mu.RUnlock()

	reports := make([]Report, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = Report{Name: c.Name(), Result: *run(ctx, c, timeout)}
		}()
	}
	wg.Wait()
	return reports
}

func run(ctx context.Context, c Checker, timeout time.Duration) *Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan *Result, 1)
	go func() { done <- c.Check(ctx) }()

	var r *Result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = Unhealthy("check timed out").WithDetail("error", ctx.Err().Error())
	}
	if r == nil {
		r = Unhealthy("check returned no result")
	}
	if r.Latency == 0 {
		r.Latency = time.Since(start)
	}
	return r
}

// OverallStatus is unhealthy if any report is, else degraded if any is,
// else healthy.
func (m *Manager) OverallStatus(reports []Report) Status {
	overall := StatusHealthy
	for _, r := range reports {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}
