package prognosis

import (
	"sort"

	"github.com/dd0wney/cluso-tfpg/pkg/engine"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Plausibility runs the chain-validity forward sweep from a hypothesis node.
//
// Unlike the tracker's strict scoring, a discrepancy downstream of an
// unbroken active-or-pending chain is treated as pending propagation and not
// penalized; only nodes below a broken chain count against the hypothesis.
// The result is a timing-tolerant confidence reading.
func (p *Prognoser) Plausibility(hypothesisID string, states engine.StateSnapshot) float64 {
	type entry struct {
		id         string
		chainValid bool
	}
	queue := []entry{{id: hypothesisID, chainValid: true}}
	visited := map[string]struct{}{hypothesisID: {}}

	totalExpected := 0
	consistent := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		isActive := cur.id == hypothesisID || states.IsActive(cur.id)
		isDiscrepancy := false
		if n, ok := p.model.Node(cur.id); ok {
			isDiscrepancy = n.Type == model.Discrepancy
		}

		nextChainValid := false
		if isActive {
			nextChainValid = true
			if isDiscrepancy {
				totalExpected++
				consistent++
			}
		} else if cur.chainValid {
			// Parent chain intact: this node is pending, not missing.
			nextChainValid = true
		} else if isDiscrepancy {
			totalExpected++
		}

		children := p.adj[cur.id]
		ids := make([]string, 0, len(children))
		for _, s := range children {
			ids = append(ids, s.to)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			queue = append(queue, entry{id: id, chainValid: nextChainValid})
		}
	}

	if totalExpected == 0 {
		return 0
	}
	return float64(consistent) / float64(totalExpected)
}
