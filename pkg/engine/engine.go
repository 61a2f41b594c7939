// Package engine drives discrepancy nodes through the inactive -> active
// transition based on the sample stream. Activation is one-shot and strictly
// measurement-driven: the graph explains symptoms, it never synthesizes them.
package engine

import (
	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
	"github.com/dd0wney/cluso-tfpg/pkg/logging"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Engine evaluates predicates against incoming samples and maintains the
// node-state table. Instances are cheap to construct and retain no state
// between runs; the refinement optimizer builds a fresh engine per trace.
type Engine struct {
	model  *model.Model
	states map[string]*NodeState
	logger logging.Logger

	// discrepancies keyed by the source name of their predicate's signal,
	// so a sample touches only the nodes that watch its parameter
	bySource map[string][]*model.Node
}

// New creates an engine with every node inactive.
func New(m *model.Model) *Engine {
	return NewWithLogger(m, logging.NewNopLogger())
}

// NewWithLogger creates an engine that reports activations to the given logger.
func NewWithLogger(m *model.Model, logger logging.Logger) *Engine {
	e := &Engine{
		model:    m,
		states:   make(map[string]*NodeState, len(m.Nodes())),
		logger:   logger,
		bySource: make(map[string][]*model.Node),
	}
	for _, n := range m.Nodes() {
		e.states[n.ID] = &NodeState{}
		if n.IsDiscrepancy() && n.Predicate != nil {
			if sig, ok := m.Signal(n.Predicate.SignalRef); ok {
				e.bySource[sig.SourceName] = append(e.bySource[sig.SourceName], n)
			}
		}
	}
	return e
}

// Apply reconciles node states with one sample. Samples must arrive in
// timestamp order; the ingestor enforces that upstream.
func (e *Engine) Apply(sample ingest.DataSample) {
	if sample.IsFailureMode {
		e.applyInjection(sample)
		return
	}
	if nodes, ok := e.bySource[sample.ParameterID]; ok {
		for _, n := range nodes {
			e.evaluate(n, sample)
		}
		return
	}
	// Parameter names outside the signal set address failure modes
	// directly; discrepancies only ever activate through their predicate.
	if target, ok := e.resolveTarget(sample.ParameterID); ok && target.IsFailureMode() {
		e.activateInjection(target, sample)
	}
}

// Run replays a full trace against fresh state. The refinement optimizer
// calls this once per labeled trace.
func (e *Engine) Run(ing *ingest.Ingestor) {
	for _, st := range e.states {
		*st = NodeState{}
	}
	for _, sample := range ing.Samples() {
		e.Apply(sample)
	}
}

// resolveTarget finds an injection target by node id first, then by human
// name.
func (e *Engine) resolveTarget(parameterID string) (*model.Node, bool) {
	if target, ok := e.model.Node(parameterID); ok {
		return target, true
	}
	return e.model.NodeByName(parameterID)
}

// applyInjection marks a ground-truth fault injection. Gate and predicate
// logic do not apply.
func (e *Engine) applyInjection(sample ingest.DataSample) {
	target, ok := e.resolveTarget(sample.ParameterID)
	if !ok {
		return
	}
	e.activateInjection(target, sample)
}

func (e *Engine) activateInjection(target *model.Node, sample ingest.DataSample) {
	st := e.states[target.ID]
	if st.Active || sample.Value == 0 {
		return
	}
	st.Active = true
	st.ActivationTimeMS = sample.TimestampMS
	st.TriggerValue = sample.Value
	e.logger.Info("fault injected",
		logging.NodeID(target.ID),
		logging.Timestamp(sample.TimestampMS))
}

// evaluate applies the activation rule for one discrepancy against one sample.
func (e *Engine) evaluate(n *model.Node, sample ingest.DataSample) {
	sig, ok := e.model.Signal(n.Predicate.SignalRef)
	if !ok {
		return
	}
	st := e.states[n.ID]
	rho := Robustness(n.Predicate, sample.Value, sig.RangeMin, sig.RangeMax)

	// Inactive nodes continuously track the current evidence margin.
	if !st.Active {
		st.Robustness = rho
	}
	if rho <= 0 || st.Active {
		return
	}
	if n.Gate == model.GateAND && !e.parentsCausallyPrior(n.ID, sample.TimestampMS) {
		return
	}

	st.Active = true
	st.ActivationTimeMS = sample.TimestampMS
	st.Robustness = rho
	st.TriggerValue = sample.Value
	e.logger.Info("node activated",
		logging.NodeID(n.ID),
		logging.Timestamp(sample.TimestampMS),
		logging.Float64("robustness", rho),
		logging.Float64("value", sample.Value))
}

// parentsCausallyPrior reports whether every parent via an incoming edge is
// already active no later than t. AND gates require this before activating.
func (e *Engine) parentsCausallyPrior(id string, t uint64) bool {
	for _, edge := range e.model.Incoming(id) {
		parent := e.states[edge.From]
		if parent == nil || !parent.Active || parent.ActivationTimeMS > t {
			return false
		}
	}
	return true
}

// States returns a read-only snapshot of the node-state table.
func (e *Engine) States() StateSnapshot {
	snap := make(StateSnapshot, len(e.states))
	for id, st := range e.states {
		snap[id] = *st
	}
	return snap
}
