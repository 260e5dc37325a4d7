// Package metrics defines the Prometheus collectors exported by the HTTP service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carcost"

// Metrics holds the collectors registered for one server.
type Metrics struct {
	Registry *prometheus.Registry

	// Requests counts HTTP requests by route and status code.
	Requests *prometheus.CounterVec
	// RequestDuration observes HTTP handler latency by route.
	RequestDuration *prometheus.HistogramVec
	// Calculations counts engine runs by operation and outcome.
	Calculations *prometheus.CounterVec
	// OptimizerEvaluations observes how many cost evaluations a search needed.
	OptimizerEvaluations prometheus.Histogram
	// StateSaves counts persisted state writes by outcome.
	StateSaves *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Engine runs by operation and outcome.",
			},
			[]string{"operation", "status"},
		),
		OptimizerEvaluations: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "optimizer_evaluations",
				Help:      "Lifetime cost evaluations per down payment search.",
				Buckets:   prometheus.LinearBuckets(10, 20, 8),
			},
		),
		StateSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_saves_total",
				Help:      "Persisted state writes by outcome.",
			},
			[]string{"status"},
		),
	}
}

// ObserveCalculation records the outcome of an engine run.
func (m *Metrics) ObserveCalculation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Calculations.WithLabelValues(operation, status).Inc()
}

// ObserveStateSave records the outcome of a state write.
func (m *Metrics) ObserveStateSave(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StateSaves.WithLabelValues(status).Inc()
}
