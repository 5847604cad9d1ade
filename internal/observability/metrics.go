package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	AuthorizationDecisions *prometheus.CounterVec
	ActiveSessions         prometheus.GaugeFunc
}

// NewMetrics registers collectors on a fresh registry. sessions reports the
// current number of open sessions and may be nil.
func NewMetrics(sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthorizationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authorization_decisions_total",
				Help: "Authorization decisions by requirement and outcome",
			},
			[]string{"requirement", "outcome", "reason"},
		),
	}

	if sessions != nil {
		m.ActiveSessions = factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "sessions_active",
				Help: "Number of sessions held in memory",
			},
			func() float64 { return float64(sessions()) },
		)
	}

	return m
}

// RecordDecision counts one authorization decision
func (m *Metrics) RecordDecision(requirement string, allowed bool, reason string) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.AuthorizationDecisions.WithLabelValues(requirement, outcome, reason).Inc()
}
