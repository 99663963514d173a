package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/norumander/wow-server-sim/internal/telemetry"
	"github.com/norumander/wow-server-sim/internal/telemetry/sinks"
)

func TestRouterForwardsToAllSinks(t *testing.T) {
	mem := sinks.NewMemory()
	r := telemetry.NewRouter(telemetry.DefaultConfig(), zerolog.Nop(), []telemetry.NamedSink{{Name: "memory", Sink: mem}})
	defer r.Close(context.Background())

	r.Publish(telemetry.Record{
		Type:      telemetry.KindMetric,
		Component: "zone",
		Message:   "tick completed",
		Tick:      5,
		Data:      map[string]any{"events": 3},
	})

	deadline := time.Now().Add(time.Second)
	for len(mem.Records()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	records := mem.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Component != "zone" || records[0].Tick != 5 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestGlobalInitializeDoubleInitFails(t *testing.T) {
	mem := sinks.NewMemory()
	if err := telemetry.Initialize(telemetry.DefaultConfig(), zerolog.Nop(), []telemetry.NamedSink{{Name: "memory", Sink: mem}}); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	defer telemetry.Shutdown(context.Background())

	if err := telemetry.Initialize(telemetry.DefaultConfig(), zerolog.Nop(), nil); err != telemetry.ErrAlreadyInitialized {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestGlobalShutdownAllowsReinitialize(t *testing.T) {
	mem := sinks.NewMemory()
	if err := telemetry.Initialize(telemetry.DefaultConfig(), zerolog.Nop(), []telemetry.NamedSink{{Name: "memory", Sink: mem}}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := telemetry.Initialize(telemetry.DefaultConfig(), zerolog.Nop(), nil); err != nil {
		t.Fatalf("re-Initialize after Shutdown failed: %v", err)
	}
	telemetry.Shutdown(context.Background())
}
