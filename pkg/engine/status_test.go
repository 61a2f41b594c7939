package engine

import (
	"testing"

	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
)

func TestStatus_Confirmed(t *testing.T) {
	eng := New(buildPumpModel())
	eng.Apply(ingest.DataSample{TimestampMS: 1250, ParameterID: "pressure", Value: 8})

	if got := eng.Status("D2", 1300); got != StatusConfirmed {
		t.Errorf("Expected CONFIRMED, got %v", got)
	}
}

func TestStatus_Unreachable(t *testing.T) {
	eng := New(buildPumpModel())

	// No parent of D4 is active
	if got := eng.Status("D4", 1000); got != StatusUnreachable {
		t.Errorf("Expected UNREACHABLE, got %v", got)
	}
}

func TestStatus_ORWindows(t *testing.T) {
	eng := New(buildPumpModel())
	// D2 active at 1000; D2 -> D4 window is [500, 2000]
	eng.Apply(ingest.DataSample{TimestampMS: 1000, ParameterID: "pressure", Value: 8})

	if got := eng.Status("D4", 1200); got != StatusPending {
		t.Errorf("At delta 200 < 500 expected PENDING, got %v", got)
	}
	if got := eng.Status("D4", 2000); got != StatusMissingShouldBeActive {
		t.Errorf("At delta 1000 inside window expected MISSING (Should be active), got %v", got)
	}
	if got := eng.Status("D4", 3500); got != StatusMissingOverdue {
		t.Errorf("At delta 2500 > 2000 expected MISSING (Overdue), got %v", got)
	}
}

func TestStatus_ANDGate(t *testing.T) {
	m := buildPumpModel()
	addANDBranch(m)
	eng := New(m)

	// Only D3 active: the AND-gated D6 is unreachable
	eng.Apply(ingest.DataSample{TimestampMS: 2200, ParameterID: "pressure", Value: 120})
	if got := eng.Status("D6", 4000); got != StatusUnreachable {
		t.Errorf("Expected UNREACHABLE with an inactive AND parent, got %v", got)
	}

	// Both parents active: window measured against the latest parent (D5 at 6500)
	eng.Apply(ingest.DataSample{TimestampMS: 6500, ParameterID: "temperature", Value: 120})

	if got := eng.Status("D6", 7000); got != StatusPending {
		t.Errorf("At delta 500 < 1000 expected PENDING, got %v", got)
	}
	if got := eng.Status("D6", 8000); got != StatusMissingShouldBeActive {
		t.Errorf("At delta 1500 inside window expected MISSING (Should be active), got %v", got)
	}
	if got := eng.Status("D6", 12000); got != StatusMissingOverdue {
		t.Errorf("At delta 5500 > 5000 expected MISSING (Overdue), got %v", got)
	}
}
