package model

import "fmt"

// MaxCriticality is the upper bound of the criticality scale.
const MaxCriticality = 10

// Validate checks referential integrity of the graph: every edge endpoint
// must exist in the node set, every discrepancy predicate must reference a
// known signal, time windows must be ordered, and criticality levels must be
// on the 0..10 scale. Violations are fatal at load.
func (m *Model) Validate() error {
	for _, n := range m.nodes {
		if !n.IsDiscrepancy() {
			continue
		}
		if n.CriticalityLevel < 0 || n.CriticalityLevel > MaxCriticality {
			return newError("Validate", "node", n.ID,
				fmt.Errorf("%w: criticality_level %d out of range [0,%d]",
					ErrIntegrity, n.CriticalityLevel, MaxCriticality))
		}
		if n.Predicate == nil {
			return newError("Validate", "node", n.ID,
				fmt.Errorf("%w: discrepancy has no predicate", ErrIntegrity))
		}
		if _, ok := m.Signal(n.Predicate.SignalRef); !ok {
			return newError("Validate", "node", n.ID,
				fmt.Errorf("%w: predicate references %w %q",
					ErrIntegrity, ErrSignalNotFound, n.Predicate.SignalRef))
		}
	}
	for _, e := range m.edges {
		if e.From == e.To {
			return newError("Validate", "edge", e.From,
				fmt.Errorf("%w: %w", ErrIntegrity, ErrSelfLoop))
		}
		if e.TimeMinMS > e.TimeMaxMS {
			return newError("Validate", "edge", e.From,
				fmt.Errorf("%w: %w: [%d,%d]", ErrIntegrity, ErrInvalidWindow,
					e.TimeMinMS, e.TimeMaxMS))
		}
		if _, ok := m.Node(e.From); !ok {
			return newError("Validate", "edge", e.From,
				fmt.Errorf("%w: %w", ErrIntegrity, ErrNodeNotFound))
		}
		if _, ok := m.Node(e.To); !ok {
			return newError("Validate", "edge", e.To,
				fmt.Errorf("%w: %w", ErrIntegrity, ErrNodeNotFound))
		}
	}
	return nil
}
