package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initReasonerMetrics() {
	r.SamplesIngestedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfpg_samples_ingested_total",
			Help: "Total number of samples ingested",
		},
		[]string{"kind"},
	)

	r.SampleOrderingFailures = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tfpg_sample_ordering_failures_total",
			Help: "Total number of samples rejected for timestamp regression",
		},
	)

	r.NodeActivationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfpg_node_activations_total",
			Help: "Total number of node activations",
		},
		[]string{"node_type"},
	)

	r.ActiveNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tfpg_active_nodes",
			Help: "Number of currently active nodes",
		},
	)

	r.DiagnosesEmittedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tfpg_diagnoses_emitted_total",
			Help: "Total number of diagnosis records emitted",
		},
	)

	r.DiagnosisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tfpg_diagnosis_duration_seconds",
			Help:    "Hypothesis tracking duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.TopPlausibility = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tfpg_top_plausibility",
			Help: "Plausibility of the highest-ranked hypothesis",
		},
	)

	r.TTCMilliseconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tfpg_ttc_milliseconds",
			Help: "Current time-to-criticality forecast in milliseconds",
		},
	)

	r.PrognosisRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfpg_prognosis_runs_total",
			Help: "Total number of prognosis computations",
		},
		[]string{"outcome"},
	)

	r.RefinementTrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfpg_refinement_trials_total",
			Help: "Total number of refinement trial mutations",
		},
		[]string{"outcome"},
	)
}
