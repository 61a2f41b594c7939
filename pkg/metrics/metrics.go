package metrics

import (
	"math"
	"time"
)

// RecordSample records one ingested sample
func (r *Registry) RecordSample(isInjection bool) {
	kind := "sensor"
	if isInjection {
		kind = "injection"
	}
	r.SamplesIngestedTotal.WithLabelValues(kind).Inc()
}

// RecordActivation records a node activation
func (r *Registry) RecordActivation(nodeType string, activeCount int) {
	r.NodeActivationsTotal.WithLabelValues(nodeType).Inc()
	r.ActiveNodes.Set(float64(activeCount))
}

// RecordDiagnosis records one diagnosis pass
func (r *Registry) RecordDiagnosis(duration time.Duration, topPlausibility float64, emitted int) {
	r.DiagnosisDuration.Observe(duration.Seconds())
	r.TopPlausibility.Set(topPlausibility)
	r.DiagnosesEmittedTotal.Add(float64(emitted))
}

// RecordPrognosis records one prognosis computation
func (r *Registry) RecordPrognosis(ttcMS float64) {
	if math.IsInf(ttcMS, 1) {
		r.PrognosisRunsTotal.WithLabelValues("unreachable").Inc()
		return
	}
	r.PrognosisRunsTotal.WithLabelValues("forecast").Inc()
	r.TTCMilliseconds.Set(ttcMS)
}

// RecordRefinementTrial records whether a trial mutation was kept or reverted
func (r *Registry) RecordRefinementTrial(kept bool) {
	outcome := "reverted"
	if kept {
		outcome = "kept"
	}
	r.RefinementTrialsTotal.WithLabelValues(outcome).Inc()
}
