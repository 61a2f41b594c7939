package engine

import (
	"testing"

	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// buildPumpModel creates the pump/valve fixture used across engine tests.
//
//	FM1 -> D1 [0,20]      D1: current < 0.5
//	FM1 -> D2 [100,500]   D2: pressure < 10
//	D2  -> D4 [500,2000]  D4: flow < 1
//	FM2 -> D3 [50,300]    D3: pressure > 100
//	D3  -> D4 [200,1000]
func buildPumpModel() *model.Model {
	m := model.New("pump-station", "1.0")
	m.AddSignal(model.Signal{ID: "S1", SourceName: "current", RangeMin: 0, RangeMax: 10})
	m.AddSignal(model.Signal{ID: "S2", SourceName: "pressure", RangeMin: 0, RangeMax: 200})
	m.AddSignal(model.Signal{ID: "S3", SourceName: "flow", RangeMin: 0, RangeMax: 10})

	m.AddNode(&model.Node{ID: "FM1", Name: "Pump Motor Burnout", Type: model.FailureMode})
	m.AddNode(&model.Node{ID: "FM2", Name: "Valve Stuck Closed", Type: model.FailureMode})
	m.AddNode(&model.Node{
		ID: "D1", Name: "Motor Current Loss", Type: model.Discrepancy, Gate: model.GateOR,
		Predicate:        &model.Predicate{SignalRef: "S1", Op: model.OpLess, Threshold: 0.5},
		CriticalityLevel: 2,
	})
	m.AddNode(&model.Node{
		ID: "D2", Name: "Suction Pressure Drop", Type: model.Discrepancy, Gate: model.GateOR,
		Predicate:        &model.Predicate{SignalRef: "S2", Op: model.OpLess, Threshold: 10},
		CriticalityLevel: 4,
	})
	m.AddNode(&model.Node{
		ID: "D3", Name: "Line Overpressure", Type: model.Discrepancy, Gate: model.GateOR,
		Predicate:        &model.Predicate{SignalRef: "S2", Op: model.OpGreater, Threshold: 100},
		CriticalityLevel: 4,
	})
	m.AddNode(&model.Node{
		ID: "D4", Name: "Flow Stoppage", Type: model.Discrepancy, Gate: model.GateOR,
		Predicate:        &model.Predicate{SignalRef: "S3", Op: model.OpLess, Threshold: 1},
		CriticalityLevel: 7,
	})

	m.AddEdge(model.Edge{From: "FM1", To: "D1", TimeMinMS: 0, TimeMaxMS: 20})
	m.AddEdge(model.Edge{From: "FM1", To: "D2", TimeMinMS: 100, TimeMaxMS: 500})
	m.AddEdge(model.Edge{From: "D2", To: "D4", TimeMinMS: 500, TimeMaxMS: 2000})
	m.AddEdge(model.Edge{From: "FM2", To: "D3", TimeMinMS: 50, TimeMaxMS: 300})
	m.AddEdge(model.Edge{From: "D3", To: "D4", TimeMinMS: 200, TimeMaxMS: 1000})
	return m
}

// addANDBranch extends the fixture with the AND-gated D6 below D3 and D5.
func addANDBranch(m *model.Model) {
	m.AddSignal(model.Signal{ID: "S4", SourceName: "temperature", RangeMin: 0, RangeMax: 150})
	m.AddSignal(model.Signal{ID: "S5", SourceName: "vibration", RangeMin: 0, RangeMax: 20})
	m.AddNode(&model.Node{
		ID: "D5", Name: "Bearing Overtemp", Type: model.Discrepancy, Gate: model.GateOR,
		Predicate:        &model.Predicate{SignalRef: "S4", Op: model.OpGreater, Threshold: 90},
		CriticalityLevel: 5,
	})
	m.AddNode(&model.Node{
		ID: "D6", Name: "Casing Rupture Risk", Type: model.Discrepancy, Gate: model.GateAND,
		Predicate:        &model.Predicate{SignalRef: "S5", Op: model.OpGreater, Threshold: 5},
		CriticalityLevel: 10,
	})
	m.AddEdge(model.Edge{From: "D3", To: "D6", TimeMinMS: 1000, TimeMaxMS: 5000})
	m.AddEdge(model.Edge{From: "D5", To: "D6", TimeMinMS: 1000, TimeMaxMS: 5000})
}

func TestRobustness_Operators(t *testing.T) {
	tests := []struct {
		name     string
		op       model.Operator
		thresh   float64
		value    float64
		rmin     float64
		rmax     float64
		expected float64
	}{
		{"greater satisfied", model.OpGreater, 100, 120, 0, 200, 0.1},
		{"greater violated", model.OpGreater, 100, 80, 0, 200, -0.1},
		{"less satisfied", model.OpLess, 10, 8, 0, 200, 0.01},
		{"less equal shares less", model.OpLessEqual, 10, 8, 0, 200, 0.01},
		{"greater equal shares greater", model.OpGreaterEqual, 100, 120, 0, 200, 0.1},
		{"equal satisfied", model.OpEqual, 50, 50, 0, 100, 1},
		{"equal off by quarter range", model.OpEqual, 50, 75, 0, 100, 0.75},
		{"not equal is negated equal", model.OpNotEqual, 50, 75, 0, 100, -0.75},
		{"degenerate range returns raw", model.OpGreater, 1, 3, 5, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := &model.Predicate{SignalRef: "S", Op: tt.op, Threshold: tt.thresh}
			got := Robustness(pred, tt.value, tt.rmin, tt.rmax)
			if diff := got - tt.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestApply_PredicateActivation(t *testing.T) {
	eng := New(buildPumpModel())

	eng.Apply(ingest.DataSample{TimestampMS: 1250, ParameterID: "pressure", Value: 8})

	st := eng.States()["D2"]
	if !st.Active {
		t.Fatal("D2 should activate on pressure 8 < 10")
	}
	if st.ActivationTimeMS != 1250 {
		t.Errorf("Expected activation at 1250, got %d", st.ActivationTimeMS)
	}
	if st.TriggerValue != 8 {
		t.Errorf("Expected trigger value 8, got %v", st.TriggerValue)
	}
	if st.Robustness <= 0 {
		t.Errorf("Expected positive robustness, got %v", st.Robustness)
	}
}

func TestApply_InactiveNodeTracksRobustness(t *testing.T) {
	eng := New(buildPumpModel())

	eng.Apply(ingest.DataSample{TimestampMS: 100, ParameterID: "pressure", Value: 150})

	// D2 (pressure < 10) is violated: robustness reflects the margin
	st := eng.States()["D2"]
	if st.Active {
		t.Fatal("D2 must not activate on pressure 150")
	}
	if st.Robustness >= 0 {
		t.Errorf("Expected negative robustness for violated predicate, got %v", st.Robustness)
	}
	// D3 (pressure > 100) activated by the same sample
	if !eng.States()["D3"].Active {
		t.Error("D3 should activate on pressure 150 > 100")
	}
}

func TestApply_ActivationIsOneShot(t *testing.T) {
	eng := New(buildPumpModel())

	eng.Apply(ingest.DataSample{TimestampMS: 1000, ParameterID: "current", Value: 0.1})
	first := eng.States()["D1"]

	eng.Apply(ingest.DataSample{TimestampMS: 2000, ParameterID: "current", Value: 0.2})
	second := eng.States()["D1"]

	if !second.Active {
		t.Fatal("D1 must stay active")
	}
	if second.ActivationTimeMS != first.ActivationTimeMS {
		t.Errorf("Activation time rewritten: %d -> %d", first.ActivationTimeMS, second.ActivationTimeMS)
	}
	if second.Robustness != first.Robustness {
		t.Errorf("Active node robustness rewritten: %v -> %v", first.Robustness, second.Robustness)
	}
}

func TestApply_InjectionByIDAndName(t *testing.T) {
	eng := New(buildPumpModel())

	eng.Apply(ingest.DataSample{TimestampMS: 1000, ParameterID: "FM1", Value: 1, IsFailureMode: true})
	if !eng.States()["FM1"].Active {
		t.Error("FM1 should activate by id injection")
	}

	eng.Apply(ingest.DataSample{TimestampMS: 2000, ParameterID: "Valve Stuck Closed", Value: 1, IsFailureMode: true})
	if !eng.States()["FM2"].Active {
		t.Error("FM2 should activate by name injection")
	}
}

func TestApply_InjectionZeroValueIgnored(t *testing.T) {
	eng := New(buildPumpModel())

	eng.Apply(ingest.DataSample{TimestampMS: 1000, ParameterID: "FM1", Value: 0, IsFailureMode: true})
	if eng.States()["FM1"].Active {
		t.Error("Zero-valued injection must not activate")
	}
}

func TestApply_ANDGateRequiresCausallyPriorParents(t *testing.T) {
	m := buildPumpModel()
	addANDBranch(m)
	eng := New(m)

	// D3 active at 2200
	eng.Apply(ingest.DataSample{TimestampMS: 2200, ParameterID: "pressure", Value: 120})

	// Predicate for D6 satisfied, but D5 is still inactive
	eng.Apply(ingest.DataSample{TimestampMS: 3000, ParameterID: "vibration", Value: 8})
	if eng.States()["D6"].Active {
		t.Fatal("AND gate must hold D6 inactive while D5 is inactive")
	}

	// D5 active at 6500; both parents now causally prior at 7500
	eng.Apply(ingest.DataSample{TimestampMS: 6500, ParameterID: "temperature", Value: 120})
	eng.Apply(ingest.DataSample{TimestampMS: 7500, ParameterID: "vibration", Value: 8})

	st := eng.States()["D6"]
	if !st.Active {
		t.Fatal("D6 should activate once both AND parents are active")
	}
	if st.ActivationTimeMS != 7500 {
		t.Errorf("Expected activation at 7500, got %d", st.ActivationTimeMS)
	}
}

func TestRun_ReplaysFullTrace(t *testing.T) {
	m := buildPumpModel()
	ing := ingest.New(m)
	for _, s := range []ingest.DataSample{
		{TimestampMS: 1000, ParameterID: "FM1", Value: 1, IsFailureMode: true},
		{TimestampMS: 1010, ParameterID: "current", Value: 0},
		{TimestampMS: 1250, ParameterID: "pressure", Value: 8},
	} {
		if err := ing.Ingest(s); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}

	eng := New(m)
	eng.Run(ing)

	for _, id := range []string{"FM1", "D1", "D2"} {
		if !eng.States().IsActive(id) {
			t.Errorf("Expected %s active after replay", id)
		}
	}
}
