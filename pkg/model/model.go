package model

import (
	"sort"
)

// Model is the static fault propagation graph: signals, nodes and edges with
// temporal intervals. It is immutable during a reasoning run; only the
// refinement optimizer calls the mutators, and never while a run is in
// progress.
type Model struct {
	Name    string
	Version string

	signals []Signal
	nodes   []*Node
	edges   []Edge

	signalIndex map[string]int // signal id -> index into signals
	nodeIndex   map[string]int // node id -> index into nodes
	outgoing    map[string][]int
	incoming    map[string][]int
}

// New creates an empty model with the given name and version.
func New(name, version string) *Model {
	return &Model{
		Name:        name,
		Version:     version,
		signalIndex: make(map[string]int),
		nodeIndex:   make(map[string]int),
		outgoing:    make(map[string][]int),
		incoming:    make(map[string][]int),
	}
}

// AddSignal registers a telemetry channel. Duplicate ids are ignored.
func (m *Model) AddSignal(s Signal) {
	if _, ok := m.signalIndex[s.ID]; ok {
		return
	}
	m.signalIndex[s.ID] = len(m.signals)
	m.signals = append(m.signals, s)
}

// Signals returns the signal set in insertion order.
func (m *Model) Signals() []Signal { return m.signals }

// Signal looks up a signal by id.
func (m *Model) Signal(id string) (*Signal, bool) {
	i, ok := m.signalIndex[id]
	if !ok {
		return nil, false
	}
	return &m.signals[i], true
}

// Nodes returns the node set in insertion order.
func (m *Model) Nodes() []*Node { return m.nodes }

// Node looks up a node by id.
func (m *Model) Node(id string) (*Node, bool) {
	i, ok := m.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return m.nodes[i], true
}

// NodeByName looks up a node by its human name. Used to resolve fault
// injections that target a failure mode by name instead of id.
func (m *Model) NodeByName(name string) (*Node, bool) {
	for _, n := range m.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Edges returns the edge set in insertion order.
func (m *Model) Edges() []Edge { return m.edges }

// Outgoing returns the edges leaving the given node.
func (m *Model) Outgoing(id string) []Edge {
	return m.edgesAt(m.outgoing[id])
}

// Incoming returns the edges entering the given node.
func (m *Model) Incoming(id string) []Edge {
	return m.edgesAt(m.incoming[id])
}

func (m *Model) edgesAt(indexes []int) []Edge {
	if len(indexes) == 0 {
		return nil
	}
	out := make([]Edge, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, m.edges[i])
	}
	return out
}

// CriticalityFront returns all nodes with CriticalityLevel >= n, ordered by id.
func (m *Model) CriticalityFront(n int) []*Node {
	var front []*Node
	for _, node := range m.nodes {
		if node.CriticalityLevel >= n {
			front = append(front, node)
		}
	}
	sort.Slice(front, func(i, j int) bool { return front[i].ID < front[j].ID })
	return front
}

// AddNode inserts a node. Duplicate ids are silently ignored.
func (m *Model) AddNode(n *Node) {
	if _, ok := m.nodeIndex[n.ID]; ok {
		return
	}
	cp := *n
	m.nodeIndex[cp.ID] = len(m.nodes)
	m.nodes = append(m.nodes, &cp)
}

// RemoveNode deletes a node and every edge incident to it. Removing an
// unknown id is a no-op.
func (m *Model) RemoveNode(id string) {
	if _, ok := m.nodeIndex[id]; !ok {
		return
	}
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.From != id && e.To != id {
			kept = append(kept, e)
		}
	}
	m.edges = kept

	nodes := m.nodes[:0]
	for _, n := range m.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	m.nodes = nodes
	m.reindex()
}

// AddEdge inserts an edge. Duplicate endpoint pairs and self-loops are
// silently ignored.
func (m *Model) AddEdge(e Edge) {
	if e.From == e.To {
		return
	}
	for _, existing := range m.edges {
		if existing.From == e.From && existing.To == e.To {
			return
		}
	}
	idx := len(m.edges)
	m.edges = append(m.edges, e)
	m.outgoing[e.From] = append(m.outgoing[e.From], idx)
	m.incoming[e.To] = append(m.incoming[e.To], idx)
}

// RemoveEdge deletes the edge between the given endpoints.
func (m *Model) RemoveEdge(from, to string) error {
	kept := m.edges[:0]
	removed := false
	for _, e := range m.edges {
		if e.From == from && e.To == to {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	m.edges = kept
	if !removed {
		return newError("RemoveEdge", "edge", from+"->"+to, ErrEdgeNotFound)
	}
	m.reindex()
	return nil
}

// reindex rebuilds the node index and adjacency lists after a structural
// mutation.
func (m *Model) reindex() {
	m.nodeIndex = make(map[string]int, len(m.nodes))
	for i, n := range m.nodes {
		m.nodeIndex[n.ID] = i
	}
	m.outgoing = make(map[string][]int)
	m.incoming = make(map[string][]int)
	for i, e := range m.edges {
		m.outgoing[e.From] = append(m.outgoing[e.From], i)
		m.incoming[e.To] = append(m.incoming[e.To], i)
	}
}

// Clone returns a deep copy of the model, so a model taken before refinement
// can be compared against the model after it.
func (m *Model) Clone() *Model {
	cp := New(m.Name, m.Version)
	for _, s := range m.signals {
		cp.AddSignal(s)
	}
	for _, n := range m.nodes {
		nc := *n
		if n.Predicate != nil {
			pc := *n.Predicate
			nc.Predicate = &pc
		}
		cp.AddNode(&nc)
	}
	for _, e := range m.edges {
		cp.AddEdge(e)
	}
	return cp
}

// Equal reports whether two models have the same signal, node and edge sets
// with the same attributes. Ordering is not significant.
func (m *Model) Equal(other *Model) bool {
	if len(m.signals) != len(other.signals) ||
		len(m.nodes) != len(other.nodes) ||
		len(m.edges) != len(other.edges) {
		return false
	}
	for _, s := range m.signals {
		o, ok := other.Signal(s.ID)
		if !ok || *o != s {
			return false
		}
	}
	for _, n := range m.nodes {
		o, ok := other.Node(n.ID)
		if !ok || !nodesEqual(n, o) {
			return false
		}
	}
	for _, e := range m.edges {
		if !other.hasEdge(e) {
			return false
		}
	}
	return true
}

func (m *Model) hasEdge(e Edge) bool {
	for _, i := range m.outgoing[e.From] {
		if m.edges[i] == e {
			return true
		}
	}
	return false
}

func nodesEqual(a, b *Node) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Type != b.Type ||
		a.Gate != b.Gate || a.CriticalityLevel != b.CriticalityLevel {
		return false
	}
	switch {
	case a.Predicate == nil && b.Predicate == nil:
		return true
	case a.Predicate == nil || b.Predicate == nil:
		return false
	default:
		return *a.Predicate == *b.Predicate
	}
}
