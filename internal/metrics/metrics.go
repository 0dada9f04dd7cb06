// Package metrics exposes Prometheus instrumentation for the tool-call
// pipeline: parse volume, validation verdicts, executions, and plan
// shape.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clokai/clok/pkg/call"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	registry *prometheus.Registry

	// Parser metrics
	DescriptorsParsed prometheus.Counter
	ParseWarnings     prometheus.Counter

	// Validation metrics
	VerdictsTotal *prometheus.CounterVec

	// Execution metrics
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec

	// Scheduling metrics
	GroupsPerBatch prometheus.Histogram
	GroupSize      prometheus.Histogram
}

// New creates and registers all metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		DescriptorsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "descriptors_parsed_total",
				Help: "Total number of tool-call descriptors parsed",
			},
		),
		ParseWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_warnings_total",
				Help: "Total number of malformed tool-call fragments skipped",
			},
		),

		VerdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validation_verdicts_total",
				Help: "Total number of validation verdicts by outcome",
			},
			[]string{"tool_name", "outcome"},
		),

		ExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool_name", "status"},
		),
		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),

		GroupsPerBatch: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "execution_groups_per_batch",
				Help:    "Number of sequential execution groups per batch",
				Buckets: []float64{1, 2, 3, 4, 5, 8, 13},
			},
		),
		GroupSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "execution_group_size",
				Help:    "Number of descriptors dispatched concurrently per group",
				Buckets: []float64{1, 2, 3, 4, 5, 8, 13, 21},
			},
		),
	}

	m.registerMetrics()
	return m
}

// registerMetrics registers all metrics with the registry.
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.DescriptorsParsed)
	m.registry.MustRegister(m.ParseWarnings)
	m.registry.MustRegister(m.VerdictsTotal)
	m.registry.MustRegister(m.ExecutionsTotal)
	m.registry.MustRegister(m.ExecutionDuration)
	m.registry.MustRegister(m.GroupsPerBatch)
	m.registry.MustRegister(m.GroupSize)
}

// ObserveVerdict records one validation verdict.
func (m *Metrics) ObserveVerdict(v call.Verdict) {
	outcome := "admitted"
	if !v.Admitted {
		outcome = v.Reason
	}
	m.VerdictsTotal.WithLabelValues(v.Descriptor.Tool, outcome).Inc()
}

// ObserveExecution records one execution result.
func (m *Metrics) ObserveExecution(res call.ExecutionResult) {
	m.ExecutionsTotal.WithLabelValues(res.Descriptor.Tool, string(res.Status)).Inc()
	m.ExecutionDuration.WithLabelValues(res.Descriptor.Tool).Observe(res.Duration.Seconds())
}

// ObservePlan records the shape of one execution plan.
func (m *Metrics) ObservePlan(groups []call.Group) {
	m.GroupsPerBatch.Observe(float64(len(groups)))
	for _, g := range groups {
		m.GroupSize.Observe(float64(len(g.Descriptors)))
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
