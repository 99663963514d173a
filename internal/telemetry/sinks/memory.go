package sinks

import (
	"context"
	"sync"

	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// Memory accumulates records for inspection in tests.
type Memory struct {
	mu      sync.Mutex
	records []telemetry.Record
}

// NewMemory constructs an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Write satisfies telemetry.Sink.
func (m *Memory) Write(record telemetry.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// Close satisfies telemetry.Sink; nothing to release.
func (m *Memory) Close(context.Context) error {
	return nil
}

// Records returns a snapshot copy of every record written so far.
func (m *Memory) Records() []telemetry.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]telemetry.Record, len(m.records))
	copy(out, m.records)
	return out
}
