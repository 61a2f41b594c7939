// Package prognosis forecasts the minimum time until a node at or above a
// criticality threshold activates, searching the propagation graph weighted
// by minimum edge delays. The forecast is a lower bound: it models the
// fastest physically admissible cascade.
package prognosis

import (
	"container/heap"
	"math"

	"github.com/dd0wney/cluso-tfpg/pkg/engine"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Result carries the forecast. TTCMS is +Inf and CriticalNodeID empty when no
// critical node is reachable from the active frontier.
type Result struct {
	TTCMS          float64
	CriticalNodeID string
}

// Unreachable is the empty forecast.
func Unreachable() Result {
	return Result{TTCMS: math.Inf(1)}
}

// Reachable reports whether the forecast found a critical path.
func (r Result) Reachable() bool { return !math.IsInf(r.TTCMS, 1) }

type succ struct {
	to        string
	timeMinMS uint64
}

// Prognoser pre-builds a min-delay adjacency list over the model.
type Prognoser struct {
	model *model.Model
	adj   map[string][]succ
}

// New creates a prognoser for the given model. Rebuild after the model is
// mutated.
func New(m *model.Model) *Prognoser {
	p := &Prognoser{model: m, adj: make(map[string][]succ)}
	for _, e := range m.Edges() {
		p.adj[e.From] = append(p.adj[e.From], succ{to: e.To, timeMinMS: e.TimeMinMS})
	}
	return p
}

// item is a frontier entry in the min-priority queue.
type item struct {
	dist   float64
	nodeID string
}

// frontier orders items by distance, breaking ties by node id so the search
// order is deterministic.
type frontier []item

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].nodeID < f[j].nodeID
}
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(item)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}

// TTC computes the time-to-criticality from the current state front.
//
// The search seeds every active node at its observed activation time and
// relaxes outgoing edges by their minimum delay. Two admissibility filters
// apply: a relaxation never targets an already-active node (observed times
// are not overridden), and never predicts an arrival before nowMS (stalled
// propagation must not read as imminent criticality). An active critical
// node is skipped so the forecast names the next critical event, not the
// present state.
func (p *Prognoser) TTC(states engine.StateSnapshot, threshold int, nowMS uint64) Result {
	pq := &frontier{}
	dist := make(map[string]float64)

	for _, id := range states.ActiveIDs() {
		d := float64(states[id].ActivationTimeMS)
		dist[id] = d
		heap.Push(pq, item{dist: d, nodeID: id})
	}
	now := float64(nowMS)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)

		if node, ok := p.model.Node(cur.nodeID); ok &&
			node.CriticalityLevel >= threshold && !states.IsActive(cur.nodeID) {
			return Result{TTCMS: cur.dist - now, CriticalNodeID: cur.nodeID}
		}

		if best, ok := dist[cur.nodeID]; ok && cur.dist > best {
			continue
		}

		for _, edge := range p.adj[cur.nodeID] {
			if states.IsActive(edge.to) {
				continue
			}
			arrival := cur.dist + float64(edge.timeMinMS)
			if arrival < now {
				continue
			}
			if best, ok := dist[edge.to]; !ok || arrival < best {
				dist[edge.to] = arrival
				heap.Push(pq, item{dist: arrival, nodeID: edge.to})
			}
		}
	}
	return Unreachable()
}
