package logging

import "time"

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field helpers

// NodeID tags a log line with a graph node id.
func NodeID(id string) Field {
	return String("node_id", id)
}

// Timestamp tags a log line with a sample time in milliseconds.
func Timestamp(ms uint64) Field {
	return Uint64("timestamp_ms", ms)
}

// Scenario tags a log line with a scenario id.
func Scenario(id string) Field {
	return String("scenario_id", id)
}

// Component tags a log line with a component name.
func Component(name string) Field {
	return String("component", name)
}
