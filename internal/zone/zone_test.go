package zone_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/zone"
)

func TestAddEntityRejectsDuplicateID(t *testing.T) {
	z := zone.New(1)
	if err := z.AddEntity(model.NewPlayer(1)); err != nil {
		t.Fatalf("unexpected error on first add: %v", err)
	}
	if err := z.AddEntity(model.NewPlayer(1)); err == nil {
		t.Fatalf("expected error adding duplicate entity id")
	}
}

func TestTakeEntityRemovesAndPreservesState(t *testing.T) {
	z := zone.New(1)
	e := model.NewPlayer(5)
	e.Combat.Health = 42
	if err := z.AddEntity(e); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	taken, ok := z.TakeEntity(5)
	if !ok {
		t.Fatalf("expected TakeEntity to find entity")
	}
	if taken.Combat.Health != 42 {
		t.Fatalf("expected sub-state preserved, got health=%d", taken.Combat.Health)
	}
	if z.HasEntity(5) {
		t.Fatalf("expected entity removed after take")
	}
}

func TestTickAdvancesCountersOnSuccess(t *testing.T) {
	z := zone.New(1)
	_ = z.AddEntity(model.NewPlayer(1))
	z.PushEvent(model.NewMovementEvent(1, model.Position{X: 3}))

	result := z.Tick(1)

	if result.HadError {
		t.Fatalf("expected successful tick, got error: %s", result.ErrorMessage)
	}
	if result.EventsProcessed != 1 {
		t.Fatalf("expected 1 event processed, got %d", result.EventsProcessed)
	}
	snap := z.Snapshot()
	if snap.TotalTicks != 1 {
		t.Fatalf("expected total ticks 1, got %d", snap.TotalTicks)
	}
	if snap.State != zone.StateActive {
		t.Fatalf("expected Active state, got %s", snap.State)
	}
}

func TestTickIsolationGuardRecoversPanickingPreHook(t *testing.T) {
	z := zone.New(1)
	_ = z.AddEntity(model.NewPlayer(1))
	z.SetPreTickHook(func(*zone.Zone) { panic("injected failure") })

	result := z.Tick(1)

	if !result.HadError {
		t.Fatalf("expected tick to report the panic as an error")
	}
	snap := z.Snapshot()
	if snap.TotalTicks != 1 {
		t.Fatalf("expected total ticks to still advance despite panic, got %d", snap.TotalTicks)
	}
	if snap.ErrorCount != 1 {
		t.Fatalf("expected error count incremented, got %d", snap.ErrorCount)
	}
	if snap.State != zone.StateCrashed {
		t.Fatalf("expected Crashed state, got %s", snap.State)
	}
	if !z.HasEntity(1) {
		t.Fatalf("expected entity map to survive the panic untouched")
	}
}

func TestTickRecoveryArcCrashedToDegradedToActive(t *testing.T) {
	z := zone.New(1)
	shouldPanic := true
	z.SetPreTickHook(func(*zone.Zone) {
		if shouldPanic {
			panic("boom")
		}
	})

	z.Tick(1)
	if z.Snapshot().State != zone.StateCrashed {
		t.Fatalf("expected Crashed after first failing tick")
	}

	shouldPanic = false
	z.Tick(2)
	if z.Snapshot().State != zone.StateDegraded {
		t.Fatalf("expected Degraded after first successful tick post-crash")
	}

	z.Tick(3)
	if z.Snapshot().State != zone.StateActive {
		t.Fatalf("expected Active after second successful tick post-crash")
	}
}

func TestEntitiesReturnsDeterministicOrder(t *testing.T) {
	z := zone.New(1)
	_ = z.AddEntity(model.NewPlayer(3))
	_ = z.AddEntity(model.NewPlayer(1))
	_ = z.AddEntity(model.NewPlayer(2))

	entities := z.Entities()
	if len(entities) != 3 || entities[0].ID != 1 || entities[1].ID != 2 || entities[2].ID != 3 {
		t.Fatalf("expected ascending id order, got %+v", entities)
	}
}
