package engine

import "github.com/dd0wney/cluso-tfpg/pkg/model"

// SymptomStatus classifies an inactive discrepancy relative to the timing of
// its active parents.
type SymptomStatus int

const (
	// StatusConfirmed: the node is active.
	StatusConfirmed SymptomStatus = iota
	// StatusPending: an active parent exists but the propagation window has
	// not opened yet.
	StatusPending
	// StatusMissingOverdue: the propagation window has already closed.
	StatusMissingOverdue
	// StatusMissingShouldBeActive: the window is open and all gate
	// requirements hold, yet the predicate has not fired. A modeling
	// inconsistency.
	StatusMissingShouldBeActive
	// StatusUnreachable: no active parent can reach this node.
	StatusUnreachable
)

// String returns the string representation of a symptom status
func (s SymptomStatus) String() string {
	switch s {
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusPending:
		return "PENDING"
	case StatusMissingOverdue:
		return "MISSING (Overdue)"
	case StatusMissingShouldBeActive:
		return "MISSING (Should be active)"
	case StatusUnreachable:
		return "UNREACHABLE"
	default:
		return "UNKNOWN"
	}
}

// Status classifies the given node at time nowMS against the current state
// table.
func (e *Engine) Status(id string, nowMS uint64) SymptomStatus {
	st, ok := e.states[id]
	if !ok {
		return StatusUnreachable
	}
	if st.Active {
		return StatusConfirmed
	}
	node, ok := e.model.Node(id)
	if !ok {
		return StatusUnreachable
	}
	incoming := e.model.Incoming(id)

	if node.Gate == model.GateAND {
		return e.statusAND(incoming, nowMS)
	}
	return e.statusOR(incoming, nowMS)
}

// statusOR: any single active parent is enough to carry the symptom, so the
// most optimistic active-parent window wins.
func (e *Engine) statusOR(incoming []model.Edge, nowMS uint64) SymptomStatus {
	anyActive := false
	anyOverdue := false
	anyInWindow := false
	for _, edge := range incoming {
		parent := e.states[edge.From]
		if parent == nil || !parent.Active {
			continue
		}
		anyActive = true
		delta := nowMS - parent.ActivationTimeMS
		switch {
		case delta < edge.TimeMinMS:
			return StatusPending
		case delta > edge.TimeMaxMS:
			anyOverdue = true
		default:
			anyInWindow = true
		}
	}
	switch {
	case !anyActive:
		return StatusUnreachable
	case anyInWindow:
		return StatusMissingShouldBeActive
	case anyOverdue:
		return StatusMissingOverdue
	default:
		return StatusUnreachable
	}
}

// statusAND: every parent is required, so the window is measured against the
// latest-activated parent's edge.
func (e *Engine) statusAND(incoming []model.Edge, nowMS uint64) SymptomStatus {
	var latest *model.Edge
	var latestTime uint64
	for i, edge := range incoming {
		parent := e.states[edge.From]
		if parent == nil || !parent.Active {
			return StatusUnreachable
		}
		if latest == nil || parent.ActivationTimeMS >= latestTime {
			latest = &incoming[i]
			latestTime = parent.ActivationTimeMS
		}
	}
	if latest == nil {
		return StatusUnreachable
	}
	delta := nowMS - latestTime
	switch {
	case delta < latest.TimeMinMS:
		return StatusPending
	case delta > latest.TimeMaxMS:
		return StatusMissingOverdue
	default:
		return StatusMissingShouldBeActive
	}
}
