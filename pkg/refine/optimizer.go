// Package refine improves the fault model offline against labeled traces.
// Every trial mutation is kept only on strict improvement of the diagnosis
// error; anything else is reverted, leaving the model bit-identical.
package refine

import (
	"github.com/dd0wney/cluso-tfpg/pkg/engine"
	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
	"github.com/dd0wney/cluso-tfpg/pkg/logging"
	"github.com/dd0wney/cluso-tfpg/pkg/metrics"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// LabeledTrace pairs a recorded sample stream with the ground truth for the
// target node: true if it should end the trace active (S+), false otherwise
// (S-).
type LabeledTrace struct {
	Ingestor           *ingest.Ingestor
	ExpectedActivation bool
}

// Interval is the temporal window placed on tentatively inserted edges.
type Interval struct {
	TimeMinMS uint64
	TimeMaxMS uint64
}

// DefaultInterval is the policy default for tentative insertions.
var DefaultInterval = Interval{TimeMinMS: 0, TimeMaxMS: 1000}

// Optimizer mutates a model to reduce diagnosis error. It must only run when
// no reasoning run is in progress.
type Optimizer struct {
	model    *model.Model
	interval Interval
	logger   logging.Logger
	metrics  *metrics.Registry
}

// New creates an optimizer using the default tentative-edge interval.
func New(m *model.Model) *Optimizer {
	return NewWithOptions(m, DefaultInterval, nil)
}

// NewWithOptions creates an optimizer with a custom tentative-edge interval
// and logger.
func NewWithOptions(m *model.Model, interval Interval, logger logging.Logger) *Optimizer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Optimizer{
		model:    m,
		interval: interval,
		logger:   logger,
		metrics:  metrics.DefaultRegistry(),
	}
}

// recordTrial reports one trial mutation outcome.
func (o *Optimizer) recordTrial(kept bool) {
	o.metrics.RecordRefinementTrial(kept)
}

// DiagnosisError computes DE = (false positives + false negatives) / |dataset|
// by replaying each trace through a fresh engine.
func (o *Optimizer) DiagnosisError(targetID string, dataset []LabeledTrace) float64 {
	if len(dataset) == 0 {
		return 0
	}
	misclassified := 0
	for _, trace := range dataset {
		eng := engine.New(o.model)
		eng.Run(trace.Ingestor)
		if eng.States().IsActive(targetID) != trace.ExpectedActivation {
			misclassified++
		}
	}
	return float64(misclassified) / float64(len(dataset))
}

// MinimalCutSet returns the ancestor set of a node via reverse BFS. These are
// the nodes structurally upstream of the target; edge addition skips them.
func (o *Optimizer) MinimalCutSet(nodeID string) map[string]struct{} {
	cut := make(map[string]struct{})
	visited := map[string]struct{}{nodeID: {}}
	queue := []string{nodeID}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range o.model.Incoming(cur) {
			cut[edge.From] = struct{}{}
			if _, seen := visited[edge.From]; !seen {
				visited[edge.From] = struct{}{}
				queue = append(queue, edge.From)
			}
		}
	}
	return cut
}

// Refine recursively mutates the graph to reduce the diagnosis error of the
// target node: successor descent first, then internal edge addition, then
// external expansion from the candidate pool.
func (o *Optimizer) Refine(targetID string, candidates []*model.Node, dataset []LabeledTrace) {
	o.refine(targetID, candidates, dataset, make(map[string]struct{}))
}

func (o *Optimizer) refine(pID string, candidates []*model.Node, dataset []LabeledTrace, descended map[string]struct{}) {
	currentDE := o.DiagnosisError(pID, dataset)
	if currentDE == 0 {
		return
	}
	descended[pID] = struct{}{}
	o.logger.Info("refining node", logging.NodeID(pID), logging.Float64("de", currentDE))

	// 1. Successor descent: push refinement downstream first. The visited
	// set stops ping-ponging on cyclic models.
	for _, edge := range o.model.Outgoing(pID) {
		if _, seen := descended[edge.To]; seen {
			continue
		}
		if o.DiagnosisError(edge.To, dataset) <= currentDE {
			o.refine(edge.To, candidates, dataset, descended)
			return
		}
	}

	// 2. Internal edge addition: a missing causal link from a discrepancy
	// outside the target's ancestor set may explain the error.
	if o.tryInternalEdge(pID, currentDE, candidates, dataset, descended) {
		return
	}

	// 3. External expansion from the candidate pool.
	o.tryExpansion(pID, currentDE, candidates, dataset, descended)
}

func (o *Optimizer) tryInternalEdge(pID string, currentDE float64, candidates []*model.Node, dataset []LabeledTrace, descended map[string]struct{}) bool {
	cut := o.MinimalCutSet(pID)
	for _, node := range o.model.Nodes() {
		if !node.IsDiscrepancy() || node.ID == pID {
			continue
		}
		if _, ancestor := cut[node.ID]; ancestor {
			continue
		}
		trial := model.Edge{
			From:      node.ID,
			To:        pID,
			TimeMinMS: o.interval.TimeMinMS,
			TimeMaxMS: o.interval.TimeMaxMS,
		}
		o.model.AddEdge(trial)
		if o.DiagnosisError(pID, dataset) < currentDE {
			o.recordTrial(true)
			o.logger.Info("kept internal edge",
				logging.String("from", node.ID), logging.String("to", pID))
			o.refine(pID, candidates, dataset, descended)
			return true
		}
		o.recordTrial(false)
		o.model.RemoveEdge(node.ID, pID)
	}
	return false
}

func (o *Optimizer) tryExpansion(pID string, currentDE float64, candidates []*model.Node, dataset []LabeledTrace, descended map[string]struct{}) {
	for _, cand := range candidates {
		if _, exists := o.model.Node(cand.ID); exists {
			continue
		}
		o.model.AddNode(cand)

		// Case A: hang the candidate below the target.
		o.model.AddEdge(model.Edge{
			From:      pID,
			To:        cand.ID,
			TimeMinMS: o.interval.TimeMinMS,
			TimeMaxMS: o.interval.TimeMaxMS,
		})
		if o.DiagnosisError(cand.ID, dataset) < currentDE {
			o.recordTrial(true)
			o.logger.Info("expanded candidate",
				logging.String("case", "A"), logging.NodeID(cand.ID))
			o.refine(cand.ID, candidates, dataset, descended)
			return
		}
		o.recordTrial(false)
		o.model.RemoveEdge(pID, cand.ID)

		// Case B: hang the candidate below a predecessor of the target.
		improved := false
		for _, edge := range o.model.Incoming(pID) {
			o.model.AddEdge(model.Edge{
				From:      edge.From,
				To:        cand.ID,
				TimeMinMS: o.interval.TimeMinMS,
				TimeMaxMS: o.interval.TimeMaxMS,
			})
			if o.DiagnosisError(pID, dataset) < currentDE {
				o.recordTrial(true)
				o.logger.Info("expanded candidate",
					logging.String("case", "B"), logging.NodeID(cand.ID))
				improved = true
				break
			}
			o.recordTrial(false)
			o.model.RemoveEdge(edge.From, cand.ID)
		}
		if improved {
			o.refine(pID, candidates, dataset, descended)
			return
		}

		o.model.RemoveNode(cand.ID)
	}
}
