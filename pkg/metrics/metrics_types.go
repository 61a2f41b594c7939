package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the reasoner
type Registry struct {
	// Ingestion Metrics
	SamplesIngestedTotal   *prometheus.CounterVec
	SampleOrderingFailures prometheus.Counter

	// Engine Metrics
	NodeActivationsTotal *prometheus.CounterVec
	ActiveNodes          prometheus.Gauge

	// Diagnosis Metrics
	DiagnosesEmittedTotal prometheus.Counter
	DiagnosisDuration     prometheus.Histogram
	TopPlausibility       prometheus.Gauge

	// Prognosis Metrics
	TTCMilliseconds    prometheus.Gauge
	PrognosisRunsTotal *prometheus.CounterVec

	// Refinement Metrics
	RefinementTrialsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}
	r.initReasonerMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
