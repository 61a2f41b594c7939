// Package loader decodes and validates model and scenario JSON files and
// hands the core pre-parsed structures. Parse and schema failures are fatal;
// reasoning never starts on a bad input.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Common sentinel errors
var (
	ErrParse  = errors.New("malformed JSON input")
	ErrSchema = errors.New("input violates schema")
)

// modelFile is the wire shape of a fault model document
type modelFile struct {
	ModelName string       `json:"model_name" validate:"required"`
	Version   string       `json:"version" validate:"required"`
	Signals   []signalSpec `json:"signals" validate:"required,dive"`
	Nodes     []nodeSpec   `json:"nodes" validate:"required,dive"`
	Edges     []edgeSpec   `json:"edges" validate:"dive"`
}

type signalSpec struct {
	ID         string   `json:"id" validate:"required"`
	SourceName string   `json:"source_name" validate:"required"`
	Type       string   `json:"type" validate:"required,oneof=Continuous Discrete"`
	Units      string   `json:"units"`
	RangeMin   *float64 `json:"range_min"`
	RangeMax   *float64 `json:"range_max"`
}

type nodeSpec struct {
	ID               string         `json:"id" validate:"required"`
	Name             string         `json:"name" validate:"required"`
	Type             string         `json:"type" validate:"required,oneof=FailureMode Discrepancy"`
	GateType         string         `json:"gate_type" validate:"omitempty,oneof=OR AND"`
	CriticalityLevel *int           `json:"criticality_level" validate:"omitempty,min=0,max=10"`
	Predicate        *predicateSpec `json:"predicate"`
}

type predicateSpec struct {
	SignalRef string   `json:"signal_ref" validate:"required"`
	Operator  string   `json:"operator" validate:"required,oneof=< > <= >= == !="`
	Threshold *float64 `json:"threshold" validate:"required"`
}

type edgeSpec struct {
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
	TimeMinMS uint64 `json:"time_min_ms"`
	TimeMaxMS uint64 `json:"time_max_ms" validate:"gtefield=TimeMinMS"`
}

// LoadModel decodes, validates and builds a fault model.
func LoadModel(r io.Reader) (*model.Model, error) {
	var file modelFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := validateModelFile(&file); err != nil {
		return nil, err
	}
	return buildModel(&file)
}

// LoadModelFile is LoadModel over a file path.
func LoadModelFile(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadModel(f)
}

func buildModel(file *modelFile) (*model.Model, error) {
	m := model.New(file.ModelName, file.Version)

	for _, s := range file.Signals {
		kind, _ := model.ParseSignalKind(s.Type)
		sig := model.Signal{
			ID:         s.ID,
			SourceName: s.SourceName,
			Kind:       kind,
			Units:      s.Units,
			RangeMin:   0,
			RangeMax:   1,
		}
		if s.RangeMin != nil {
			sig.RangeMin = *s.RangeMin
		}
		if s.RangeMax != nil {
			sig.RangeMax = *s.RangeMax
		}
		m.AddSignal(sig)
	}

	for _, n := range file.Nodes {
		node, err := buildNode(n)
		if err != nil {
			return nil, err
		}
		m.AddNode(node)
	}

	for _, e := range file.Edges {
		m.AddEdge(model.Edge{
			From:      e.From,
			To:        e.To,
			TimeMinMS: e.TimeMinMS,
			TimeMaxMS: e.TimeMaxMS,
		})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// buildNode converts one wire node into the model's tagged variant.
func buildNode(n nodeSpec) (*model.Node, error) {
	node := &model.Node{ID: n.ID, Name: n.Name}
	if n.Type != "Discrepancy" {
		return node, nil
	}
	node.Type = model.Discrepancy
	gate, ok := model.ParseGateType(n.GateType)
	if !ok || n.GateType == "" {
		return nil, fmt.Errorf("%w: node %q: unknown gate_type %q",
			ErrSchema, n.ID, n.GateType)
	}
	node.Gate = gate
	if n.CriticalityLevel == nil {
		return nil, fmt.Errorf("%w: node %q: missing criticality_level",
			ErrSchema, n.ID)
	}
	node.CriticalityLevel = *n.CriticalityLevel
	if n.Predicate == nil {
		return nil, fmt.Errorf("%w: node %q: missing predicate", ErrSchema, n.ID)
	}
	op, ok := model.ParseOperator(n.Predicate.Operator)
	if !ok {
		return nil, fmt.Errorf("%w: node %q: unknown operator %q",
			ErrSchema, n.ID, n.Predicate.Operator)
	}
	node.Predicate = &model.Predicate{
		SignalRef: n.Predicate.SignalRef,
		Op:        op,
		Threshold: *n.Predicate.Threshold,
	}
	return node, nil
}

// Scenario is a decoded test data stream.
type Scenario struct {
	ScenarioID string
	Samples    []ingest.DataSample
}

// scenarioFile is the wire shape of a scenario document
type scenarioFile struct {
	ScenarioID string            `json:"scenario_id" validate:"required"`
	DataStream []json.RawMessage `json:"data_stream" validate:"required"`
}

type eventSpec struct {
	Comment       *string `json:"comment"`
	TimestampMS   *uint64 `json:"timestamp_ms"`
	ParameterID   string  `json:"parameter_id"`
	Value         any     `json:"value"`
	IsFailureMode bool    `json:"is_failure_mode"`
}

// LoadScenario decodes a scenario document. Comment entries are skipped;
// boolean values are coerced to 0/1.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var file scenarioFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := validateScenarioFile(&file); err != nil {
		return nil, err
	}

	samples, err := decodeStream(file.DataStream)
	if err != nil {
		return nil, err
	}
	return &Scenario{ScenarioID: file.ScenarioID, Samples: samples}, nil
}

// decodeStream converts a raw data_stream array into samples, skipping
// comment entries.
func decodeStream(stream []json.RawMessage) ([]ingest.DataSample, error) {
	var samples []ingest.DataSample
	for i, raw := range stream {
		var ev eventSpec
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: data_stream[%d]: %v", ErrParse, i, err)
		}
		if ev.Comment != nil {
			continue
		}
		if ev.TimestampMS == nil || ev.ParameterID == "" {
			return nil, fmt.Errorf("%w: data_stream[%d]: missing timestamp_ms or parameter_id",
				ErrSchema, i)
		}
		value, err := coerceValue(ev.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: data_stream[%d]: %v", ErrSchema, i, err)
		}
		samples = append(samples, ingest.DataSample{
			TimestampMS:   *ev.TimestampMS,
			ParameterID:   ev.ParameterID,
			Value:         value,
			IsFailureMode: ev.IsFailureMode,
		})
	}
	return samples, nil
}

// LoadScenarioFile is LoadScenario over a file path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadScenario(f)
}

func coerceValue(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("value must be a number or boolean, got %T", v)
	}
}
