package fault_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/fault"
	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/zone"
)

func TestSessionCrashRemovesOneEntityThenNoOps(t *testing.T) {
	z := zone.New(1)
	_ = z.AddEntity(model.NewPlayer(1))
	_ = z.AddEntity(model.NewPlayer(2))

	f := fault.NewSessionCrash()
	f.Activate(fault.Config{})

	f.OnTick(1, z)
	if z.EntityCount() != 1 {
		t.Fatalf("expected exactly one entity removed, got count=%d", z.EntityCount())
	}

	f.OnTick(2, z)
	if z.EntityCount() != 1 {
		t.Fatalf("expected no further removals on subsequent dispatch, got count=%d", z.EntityCount())
	}
}

func TestSessionCrashOnEmptyZoneIsNoOp(t *testing.T) {
	z := zone.New(1)
	f := fault.NewSessionCrash()
	f.Activate(fault.Config{})
	f.OnTick(1, z)
	if z.EntityCount() != 0 {
		t.Fatalf("expected empty zone to remain empty")
	}
}

func TestEventQueueFloodInjectsMultiplierEventsPerEntity(t *testing.T) {
	z := zone.New(1)
	_ = z.AddEntity(model.NewPlayer(1))
	_ = z.AddEntity(model.NewPlayer(2))

	f := fault.NewEventQueueFlood()
	f.Activate(fault.Config{Params: map[string]any{"multiplier": uint64(3)}})
	f.OnTick(5, z)

	result := z.Tick(5)
	if result.EventsProcessed != 6 {
		t.Fatalf("expected 2 entities * 3 multiplier = 6 events, got %d", result.EventsProcessed)
	}
}

func TestMemoryPressureActivateDeactivate(t *testing.T) {
	f := fault.NewMemoryPressure()
	if !f.Activate(fault.Config{Params: map[string]any{"megabytes": uint64(1)}}) {
		t.Fatalf("expected activation to succeed")
	}
	if !f.IsActive() {
		t.Fatalf("expected fault active")
	}
	f.Deactivate()
	if f.IsActive() {
		t.Fatalf("expected fault inactive after deactivate")
	}
}

func TestCascadingZoneFailureCrashesSourceThenFloodsTarget(t *testing.T) {
	source := zone.New(1)
	target := zone.New(2)
	_ = target.AddEntity(model.NewPlayer(1))

	f := fault.NewCascadingZoneFailure()
	f.Activate(fault.Config{Params: map[string]any{
		"source_zone":      uint64(1),
		"target_zone":      uint64(2),
		"flood_multiplier": uint64(2),
	}})

	source.SetPreTickHook(func(z *zone.Zone) { f.OnTick(1, z) })
	result := source.Tick(1)
	if !result.HadError {
		t.Fatalf("expected source zone tick to fail from injected panic")
	}

	target.SetPreTickHook(func(z *zone.Zone) { f.OnTick(2, z) })
	tickResult := target.Tick(2)
	if tickResult.EventsProcessed != 2 {
		t.Fatalf("expected target zone flooded with 2 events, got %d", tickResult.EventsProcessed)
	}
}

func TestSlowLeakGrowsDelayEveryIncrementEvery(t *testing.T) {
	f := fault.NewSlowLeak()
	f.Activate(fault.Config{Params: map[string]any{
		"increment_ms":    uint64(1),
		"increment_every": uint64(2),
	}})

	f.OnTick(1, nil)
	if f.CurrentDelayMS() != 0 {
		t.Fatalf("expected no delay yet, got %d", f.CurrentDelayMS())
	}
	f.OnTick(2, nil)
	if f.CurrentDelayMS() != 1 {
		t.Fatalf("expected delay incremented on 2nd dispatch, got %d", f.CurrentDelayMS())
	}
}

func TestSplitBrainCreatesPhantomsOncePerZone(t *testing.T) {
	z := zone.New(1)
	f := fault.NewSplitBrain()
	f.Activate(fault.Config{Params: map[string]any{"phantom_count": uint64(2), "phantom_base_id": uint64(9000)}})

	f.OnTick(1, z)
	if z.EntityCount() != 2 {
		t.Fatalf("expected 2 phantom entities created, got %d", z.EntityCount())
	}
	f.OnTick(2, z)
	if z.EntityCount() != 2 {
		t.Fatalf("expected phantoms created only once, got %d", z.EntityCount())
	}
}

func TestThunderingHerdDisconnectsThenReconnectsAfterDelay(t *testing.T) {
	z := zone.New(1)
	_ = z.AddEntity(model.NewPlayer(1))
	_ = z.AddEntity(model.NewPlayer(2))

	f := fault.NewThunderingHerd()
	f.Activate(fault.Config{Params: map[string]any{"reconnect_delay_ticks": uint64(5)}})

	f.OnTick(1, z)
	if z.EntityCount() != 0 {
		t.Fatalf("expected all players disconnected, got count=%d", z.EntityCount())
	}

	f.OnTick(4, z)
	if z.EntityCount() != 0 {
		t.Fatalf("expected players still disconnected before delay elapses")
	}

	f.OnTick(6, z)
	if z.EntityCount() != 2 {
		t.Fatalf("expected players reconnected after delay, got count=%d", z.EntityCount())
	}
}
