package hypothesis

import (
	"sort"

	"github.com/dd0wney/cluso-tfpg/pkg/engine"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Tiers groups diagnosis output for reporting. Tier 1 holds fully explained
// hypotheses, Tier 2 partial ones, Tier 3 the active symptoms no candidate
// accounts for.
type Tiers struct {
	// Full: plausibility == 1.
	Full []Diagnosis
	// Partial: 0 < plausibility < 1.
	Partial []Diagnosis
	// Unexplained: active discrepancies absent from every candidate's
	// consistent set, sorted by id.
	Unexplained []string
}

// Tier splits the ranked diagnosis list and flags unexplained symptoms.
func (t *Tracker) Tier(diagnoses []Diagnosis, states engine.StateSnapshot) Tiers {
	var tiers Tiers
	explained := make(map[string]struct{})

	for _, d := range diagnoses {
		if d.Plausibility == 1 {
			tiers.Full = append(tiers.Full, d)
		} else {
			tiers.Partial = append(tiers.Partial, d)
		}
		for _, id := range d.ConsistentSymptomIDs {
			explained[id] = struct{}{}
		}
	}

	for _, id := range states.ActiveIDs() {
		n, ok := t.model.Node(id)
		if !ok || n.Type != model.Discrepancy {
			continue
		}
		if _, ok := explained[id]; !ok {
			tiers.Unexplained = append(tiers.Unexplained, id)
		}
	}
	sort.Strings(tiers.Unexplained)
	return tiers
}
