// Package ingest buffers timestamped telemetry samples and maintains the
// stable mapping between external parameter names and internal integer ids.
package ingest

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// Common sentinel errors
var (
	ErrSampleOrdering    = errors.New("sample timestamp regresses")
	ErrUnknownInternalID = errors.New("unknown internal id")
)

// DataSample is one event from a test stream: a sensor reading or, when
// IsFailureMode is set, a ground-truth fault injection targeting a failure
// mode by id or name.
type DataSample struct {
	TimestampMS   uint64
	ParameterID   string
	Value         float64
	IsFailureMode bool
}

// Ingestor is an append-only sample buffer plus a bidirectional map from
// external parameter names to internal integer ids. The map is pre-populated
// from the model's signal source names; names first seen in the stream (fault
// injection targets, typically) get fresh ids on sight.
type Ingestor struct {
	samples []DataSample

	nameToID map[string]int
	idToName []string
}

// New creates an ingestor with id mappings seeded from the model's signals.
func New(m *model.Model) *Ingestor {
	ing := &Ingestor{nameToID: make(map[string]int)}
	for _, s := range m.Signals() {
		ing.assign(s.SourceName)
	}
	return ing
}

func (ing *Ingestor) assign(name string) int {
	if id, ok := ing.nameToID[name]; ok {
		return id
	}
	id := len(ing.idToName)
	ing.nameToID[name] = id
	ing.idToName = append(ing.idToName, name)
	return id
}

// Ingest appends a sample to the buffer. Timestamps must be monotonically
// non-decreasing; a regression aborts the run.
func (ing *Ingestor) Ingest(sample DataSample) error {
	if n := len(ing.samples); n > 0 && sample.TimestampMS < ing.samples[n-1].TimestampMS {
		return fmt.Errorf("%w: %dms after %dms", ErrSampleOrdering,
			sample.TimestampMS, ing.samples[n-1].TimestampMS)
	}
	ing.assign(sample.ParameterID)
	ing.samples = append(ing.samples, sample)
	return nil
}

// Samples returns the full ingestion history in arrival order.
func (ing *Ingestor) Samples() []DataSample { return ing.samples }

// InternalID returns the internal id for a parameter name, assigning a fresh
// id if the name has not been seen before.
func (ing *Ingestor) InternalID(name string) int {
	return ing.assign(name)
}

// LookupInternalID returns the internal id for a known parameter name, or -1.
func (ing *Ingestor) LookupInternalID(name string) int {
	if id, ok := ing.nameToID[name]; ok {
		return id
	}
	return -1
}

// ParameterID is the reverse lookup from internal id to external name.
func (ing *Ingestor) ParameterID(id int) (string, error) {
	if id < 0 || id >= len(ing.idToName) {
		return "", fmt.Errorf("%w: %d", ErrUnknownInternalID, id)
	}
	return ing.idToName[id], nil
}
