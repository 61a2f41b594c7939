// Package hypothesis ranks candidate root causes for the currently active
// symptoms. Backward traversal under temporal-window constraints enumerates
// candidate failure modes; forward traversal scores each one.
package hypothesis

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/dd0wney/cluso-tfpg/pkg/engine"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Diagnosis is one ranked candidate explanation.
type Diagnosis struct {
	FailureModeID   string
	FailureModeName string
	// Plausibility is |consistent| / |expected|, in [0,1].
	Plausibility float64
	// AggregateRobustness is the mean robustness over expected symptoms,
	// clamped to [-1,1].
	AggregateRobustness float64
	// ExpectedSymptomIDs are the discrepancies reachable forward from the
	// failure mode, sorted by id.
	ExpectedSymptomIDs []string
	// ConsistentSymptomIDs are the expected symptoms that are active,
	// sorted by id.
	ConsistentSymptomIDs []string
	// SymptomValues maps each consistent symptom to the sample value that
	// triggered it.
	SymptomValues map[string]float64
}

// Tracker runs diagnosis over a fixed model.
type Tracker struct {
	model *model.Model
}

// New creates a tracker for the given model.
func New(m *model.Model) *Tracker {
	return &Tracker{model: m}
}

// Diagnose produces the ranked diagnosis list for the given state snapshot.
// Ranking is plausibility descending, then aggregate robustness descending,
// then failure mode id ascending, so the output is deterministic.
func (t *Tracker) Diagnose(states engine.StateSnapshot) []Diagnosis {
	candidates := t.backward(states)

	diagnoses := make([]Diagnosis, 0, len(candidates))
	for _, fmID := range candidates {
		d, ok := t.score(fmID, states)
		if ok {
			diagnoses = append(diagnoses, d)
		}
	}

	sort.Slice(diagnoses, func(i, j int) bool {
		a, b := diagnoses[i], diagnoses[j]
		if a.Plausibility != b.Plausibility {
			return a.Plausibility > b.Plausibility
		}
		if a.AggregateRobustness != b.AggregateRobustness {
			return a.AggregateRobustness > b.AggregateRobustness
		}
		return a.FailureModeID < b.FailureModeID
	})
	return diagnoses
}

// backward walks edges in reverse from every active discrepancy, collecting
// failure modes. A discrepancy parent is crossed only when it is active and
// the observed delay fits the edge window; a contradiction prunes the branch.
func (t *Tracker) backward(states engine.StateSnapshot) []string {
	candidates := make(map[string]struct{})

	var walk func(id string, visited map[string]struct{})
	walk = func(id string, visited map[string]struct{}) {
		if _, seen := visited[id]; seen {
			return
		}
		visited[id] = struct{}{}

		for _, edge := range t.model.Incoming(id) {
			parent, ok := t.model.Node(edge.From)
			if !ok {
				continue
			}
			if parent.IsFailureMode() {
				candidates[parent.ID] = struct{}{}
				continue
			}
			ps := states[parent.ID]
			if !ps.Active {
				continue
			}
			delta := states[id].ActivationTimeMS - ps.ActivationTimeMS
			if states[id].ActivationTimeMS < ps.ActivationTimeMS ||
				delta < edge.TimeMinMS || delta > edge.TimeMaxMS {
				continue
			}
			walk(parent.ID, visited)
		}
	}

	for _, id := range states.ActiveIDs() {
		node, ok := t.model.Node(id)
		if !ok || !node.IsDiscrepancy() {
			continue
		}
		walk(id, make(map[string]struct{}))
	}

	ids := maps.Keys(candidates)
	sort.Strings(ids)
	return ids
}

// Expected returns the discrepancies reachable forward from the given node
// along the edge graph, sorted by id. Traversal carries a visited set so
// cyclic models terminate.
func (t *Tracker) Expected(fromID string) []string {
	visited := map[string]struct{}{fromID: {}}
	queue := []string{fromID}
	expected := make(map[string]struct{})

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, edge := range t.model.Outgoing(u) {
			if _, seen := visited[edge.To]; seen {
				continue
			}
			visited[edge.To] = struct{}{}
			queue = append(queue, edge.To)
			if n, ok := t.model.Node(edge.To); ok && n.IsDiscrepancy() {
				expected[edge.To] = struct{}{}
			}
		}
	}

	ids := maps.Keys(expected)
	sort.Strings(ids)
	return ids
}

// score computes plausibility and aggregate robustness for one candidate.
// Candidates with zero plausibility are suppressed.
func (t *Tracker) score(fmID string, states engine.StateSnapshot) (Diagnosis, bool) {
	node, ok := t.model.Node(fmID)
	if !ok {
		return Diagnosis{}, false
	}
	expected := t.Expected(fmID)
	if len(expected) == 0 {
		return Diagnosis{}, false
	}

	var consistent []string
	values := make(map[string]float64)
	sumRobustness := 0.0
	for _, id := range expected {
		st := states[id]
		sumRobustness += st.Robustness
		if st.Active {
			consistent = append(consistent, id)
			values[id] = st.TriggerValue
		}
	}
	if len(consistent) == 0 {
		return Diagnosis{}, false
	}

	aggregate := sumRobustness / float64(len(expected))
	if aggregate > 1 {
		aggregate = 1
	} else if aggregate < -1 {
		aggregate = -1
	}

	return Diagnosis{
		FailureModeID:        node.ID,
		FailureModeName:      node.Name,
		Plausibility:         float64(len(consistent)) / float64(len(expected)),
		AggregateRobustness:  aggregate,
		ExpectedSymptomIDs:   expected,
		ConsistentSymptomIDs: consistent,
		SymptomValues:        values,
	}, true
}
