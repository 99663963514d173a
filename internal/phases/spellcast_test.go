package phases_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/phases"
)

func TestProcessSpellCastInstantCastCountsStartAndComplete(t *testing.T) {
	entities := newEntities(1)
	batch := []model.GameEvent{model.NewCastStartEvent(1, 42, 0)}

	result := phases.ProcessSpellCast(batch, entities, 100)

	if result.CastsStarted != 1 || result.CastsCompleted != 1 {
		t.Fatalf("expected instant cast to count as both started and completed, got %+v", result)
	}
	if entities[1].Cast.IsCasting {
		t.Fatalf("instant cast must not set IsCasting")
	}
	if entities[1].Cast.GCDExpiresTick != 100+model.GlobalCooldownTicks {
		t.Fatalf("expected GCD to be set, got %d", entities[1].Cast.GCDExpiresTick)
	}
}

func TestProcessSpellCastGCDBlocksCast(t *testing.T) {
	entities := newEntities(1)
	entities[1].Cast.GCDExpiresTick = 50
	batch := []model.GameEvent{model.NewCastStartEvent(1, 7, 10)}

	result := phases.ProcessSpellCast(batch, entities, 40)

	if result.GCDBlocked != 1 || result.CastsStarted != 0 {
		t.Fatalf("expected cast to be GCD blocked, got %+v", result)
	}
}

func TestProcessSpellCastMovementDoesNotInterruptSameTickCast(t *testing.T) {
	entities := newEntities(1)
	entities[1].Cast.MovedThisTick = false

	moveBatch := []model.GameEvent{model.NewMovementEvent(1, model.Position{X: 1})}
	phases.ProcessMovement(moveBatch, entities, 1)

	castBatch := []model.GameEvent{model.NewCastStartEvent(1, 5, 20)}
	result := phases.ProcessSpellCast(castBatch, entities, 1)

	if result.CastsInterrupted != 0 {
		t.Fatalf("new cast in same tick as movement must not be interrupted, got %+v", result)
	}
	if !entities[1].Cast.IsCasting {
		t.Fatalf("expected new cast to remain active")
	}
	if entities[1].Cast.MovedThisTick {
		t.Fatalf("expected MovedThisTick cleared at end of spellcast step")
	}
}

func TestProcessSpellCastInterruptsCastingEntityOnNextTickMovement(t *testing.T) {
	entities := newEntities(1)
	entities[1].Cast.IsCasting = true
	entities[1].Cast.SpellID = 3
	entities[1].Cast.CastTicksRemaining = 5
	entities[1].Cast.MovedThisTick = true

	result := phases.ProcessSpellCast(nil, entities, 10)

	if result.CastsInterrupted != 1 {
		t.Fatalf("expected movement to interrupt prior-tick cast, got %+v", result)
	}
	if entities[1].Cast.IsCasting {
		t.Fatalf("expected cast to be cleared")
	}
}

func TestProcessSpellCastExplicitInterruptIsNoOpWhenNotCasting(t *testing.T) {
	entities := newEntities(1)
	batch := []model.GameEvent{model.NewInterruptEvent(1)}

	result := phases.ProcessSpellCast(batch, entities, 1)

	if result.CastsInterrupted != 0 {
		t.Fatalf("interrupt on non-casting entity must be a no-op, got %+v", result)
	}
}

func TestProcessSpellCastTimerCompletesAtZero(t *testing.T) {
	entities := newEntities(1)
	entities[1].Cast.IsCasting = true
	entities[1].Cast.SpellID = 9
	entities[1].Cast.CastTicksRemaining = 1

	result := phases.ProcessSpellCast(nil, entities, 1)

	if result.CastsCompleted != 1 {
		t.Fatalf("expected cast to complete when timer reaches zero, got %+v", result)
	}
	if entities[1].Cast.IsCasting || entities[1].Cast.SpellID != 0 {
		t.Fatalf("expected cast state cleared on completion")
	}
}
