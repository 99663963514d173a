package telemetry

import "context"

// Sink is a write-only destination for telemetry records. Concrete sinks
// (console, JSON file) live in the sinks subpackage; shipping to an
// external log aggregator is just another Sink implementation plugged in
// at the same seam.
type Sink interface {
	Write(Record) error
	Close(context.Context) error
}

// NamedSink pairs a sink with a label used in diagnostics and backoff logs.
type NamedSink struct {
	Name string
	Sink Sink
}
