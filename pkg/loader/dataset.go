package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// LabeledSamples is one training trace: a sample stream plus the ground truth
// for the dataset's target node.
type LabeledSamples struct {
	Samples            []ingest.DataSample
	ExpectedActivation bool
}

// Dataset is a decoded refinement training document.
type Dataset struct {
	TargetNodeID string
	// Candidates is the disjoint pool of discrepancies available for
	// external expansion. May be empty.
	Candidates []*model.Node
	Traces     []LabeledSamples
}

// datasetFile is the wire shape of a refinement dataset document
type datasetFile struct {
	TargetNodeID string      `json:"target_node_id" validate:"required"`
	Candidates   []nodeSpec  `json:"candidates" validate:"dive"`
	Traces       []traceSpec `json:"traces" validate:"required,min=1,dive"`
}

type traceSpec struct {
	ExpectedActivation bool              `json:"expected_activation"`
	DataStream         []json.RawMessage `json:"data_stream" validate:"required"`
}

// LoadDataset decodes a refinement dataset document.
func LoadDataset(r io.Reader) (*Dataset, error) {
	var file datasetFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := validateDatasetFile(&file); err != nil {
		return nil, err
	}

	ds := &Dataset{TargetNodeID: file.TargetNodeID}
	for _, c := range file.Candidates {
		node, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		ds.Candidates = append(ds.Candidates, node)
	}
	for i, tr := range file.Traces {
		samples, err := decodeStream(tr.DataStream)
		if err != nil {
			return nil, fmt.Errorf("traces[%d]: %w", i, err)
		}
		ds.Traces = append(ds.Traces, LabeledSamples{
			Samples:            samples,
			ExpectedActivation: tr.ExpectedActivation,
		})
	}
	return ds, nil
}

// LoadDatasetFile is LoadDataset over a file path.
func LoadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDataset(f)
}
