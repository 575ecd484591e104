package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for skilladmin
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Admin API request metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Session guard metrics
	SessionTransitions *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilladmin_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skilladmin_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilladmin_api_requests_total",
				Help: "Total number of admin API requests",
			},
			[]string{"method", "route", "status_class"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skilladmin_api_request_duration_seconds",
				Help:    "Admin API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"method", "route"},
		),
		RequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilladmin_api_request_errors_total",
				Help: "Total number of admin API requests that failed",
			},
			[]string{"method", "route", "error_type"},
		),

		SessionTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilladmin_session_transitions_total",
				Help: "Total number of session state transitions",
			},
			[]string{"from", "to", "reason"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilladmin_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// StatusClass buckets an HTTP status into "2xx", "4xx" and so on.
// Zero means no response was received.
func StatusClass(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}

// ObserveRequest records one completed admin API request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, StatusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRequestError records a failed request by error type
// (transport, status, decode, store, contract).
func (m *Metrics) ObserveRequestError(method, route, errorType string) {
	if m == nil {
		return
	}
	m.RequestErrors.WithLabelValues(method, route, errorType).Inc()
}

// ObserveCommand records a finished CLI command.
func (m *Metrics) ObserveCommand(command string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveTransition records a session guard transition.
func (m *Metrics) ObserveTransition(from, to, reason string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(from, to, reason).Inc()
}

// ObserveError records a structured error by its code and the component
// that returned it.
func (m *Metrics) ObserveError(code, component string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
