package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CommandExecutions", m.CommandExecutions},
		{"CommandDuration", m.CommandDuration},
		{"Requests", m.Requests},
		{"RequestDuration", m.RequestDuration},
		{"RequestErrors", m.RequestErrors},
		{"SessionTransitions", m.SessionTransitions},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "none"},
		{200, "2xx"},
		{201, "2xx"},
		{401, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		if got := StatusClass(tt.status); got != tt.want {
			t.Errorf("StatusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest("GET", "/admin/get/users", 200, 120*time.Millisecond)
	m.ObserveRequest("GET", "/admin/get/users", 200, 80*time.Millisecond)
	m.ObserveRequest("DELETE", "/admin/delete/user/{id}", 404, 10*time.Millisecond)
	m.ObserveRequestError("DELETE", "/admin/delete/user/{id}", "status")

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/admin/get/users", "2xx")); got != 2 {
		t.Errorf("Requests GET 2xx = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("DELETE", "/admin/delete/user/{id}", "4xx")); got != 1 {
		t.Errorf("Requests DELETE 4xx = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RequestErrors.WithLabelValues("DELETE", "/admin/delete/user/{id}", "status")); got != 1 {
		t.Errorf("RequestErrors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got != 2 {
		t.Errorf("RequestDuration series = %d, want 2", got)
	}
}

func TestObserveCommandAndTransition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCommand("users list", true, time.Second)
	m.ObserveCommand("users list", false, time.Second)
	m.ObserveTransition("unauthenticated", "authenticated", "login")

	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("users list", "true")); got != 1 {
		t.Errorf("CommandExecutions true = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("users list", "false")); got != 1 {
		t.Errorf("CommandExecutions false = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SessionTransitions.WithLabelValues("unauthenticated", "authenticated", "login")); got != 1 {
		t.Errorf("SessionTransitions = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ObserveRequestError("GET", "/", "transport")
	m.ObserveCommand("x", true, time.Millisecond)
	m.ObserveTransition("a", "b", "c")
	m.ObserveError("AUTH-001", "x")
}

func TestObserveError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveError("AUTH-001", "skilladmin users list")
	m.ObserveError("AUTH-001", "skilladmin users list")

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("AUTH-001", "skilladmin users list")); got != 2 {
		t.Errorf("Errors = %v, want 2", got)
	}
}
