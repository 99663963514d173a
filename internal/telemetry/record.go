package telemetry

import (
	"encoding/json"
	"time"
)

// Kind is one of the four record categories the telemetry sink contract
// recognises.
type Kind string

const (
	KindMetric Kind = "metric"
	KindEvent  Kind = "event"
	KindHealth Kind = "health"
	KindError  Kind = "error"
)

// schemaVersion is the "v" field of every emitted record.
const schemaVersion = 1

// isoMillis is the record timestamp layout: ISO-8601 with millisecond
// precision and a literal Z suffix (always UTC).
const isoMillis = "2006-01-02T15:04:05.000Z"

// Record is one line of the telemetry sink's write-only, line-structured
// contract. Fields mirror the wire schema exactly: v, timestamp, type,
// component, message, data.
type Record struct {
	V         int            `json:"v"`
	Timestamp time.Time      `json:"-"`
	Type      Kind           `json:"type"`
	Component string         `json:"component"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`

	// Tick is carried for sinks that want to correlate records with a
	// simulation tick (console formatting); it is not part of the wire
	// schema and is therefore excluded from JSON encoding of Data.
	Tick uint64 `json:"-"`
}

// MarshalJSON renders the record using the exact field set and timestamp
// format required by the sink contract.
func (r Record) MarshalJSON() ([]byte, error) {
	type wire struct {
		V         int            `json:"v"`
		Timestamp string         `json:"timestamp"`
		Type      Kind           `json:"type"`
		Component string         `json:"component"`
		Message   string         `json:"message"`
		Data      map[string]any `json:"data,omitempty"`
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	w := wire{
		V:         schemaVersion,
		Timestamp: ts.UTC().Format(isoMillis),
		Type:      r.Type,
		Component: r.Component,
		Message:   r.Message,
		Data:      r.Data,
	}
	return json.Marshal(w)
}

func metricRecord(component, message string, tick uint64, data map[string]any) Record {
	return Record{V: schemaVersion, Type: KindMetric, Component: component, Message: message, Tick: tick, Data: data}
}

func eventRecord(component, message string, tick uint64, data map[string]any) Record {
	return Record{V: schemaVersion, Type: KindEvent, Component: component, Message: message, Tick: tick, Data: data}
}

func healthRecord(component, message string, tick uint64, data map[string]any) Record {
	return Record{V: schemaVersion, Type: KindHealth, Component: component, Message: message, Tick: tick, Data: data}
}

func errorRecord(component, message string, tick uint64, data map[string]any) Record {
	return Record{V: schemaVersion, Type: KindError, Component: component, Message: message, Tick: tick, Data: data}
}
