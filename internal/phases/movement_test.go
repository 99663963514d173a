package phases_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/phases"
)

func newEntities(ids ...uint64) map[uint64]*model.Entity {
	out := make(map[uint64]*model.Entity, len(ids))
	for _, id := range ids {
		e := model.NewPlayer(id)
		out[id] = &e
	}
	return out
}

func TestProcessMovementLastWriteWins(t *testing.T) {
	entities := newEntities(1)
	batch := []model.GameEvent{
		model.NewMovementEvent(1, model.Position{X: 1}),
		model.NewMovementEvent(1, model.Position{X: 9}),
	}

	result := phases.ProcessMovement(batch, entities, 10)

	if result.EntitiesMoved != 1 {
		t.Fatalf("expected 1 distinct entity moved, got %d", result.EntitiesMoved)
	}
	if entities[1].Pos.X != 9 {
		t.Fatalf("expected last write to win, got X=%v", entities[1].Pos.X)
	}
	if !entities[1].Cast.MovedThisTick {
		t.Fatalf("expected MovedThisTick to be set")
	}
}

func TestProcessMovementDropsUnknownSession(t *testing.T) {
	entities := newEntities(1)
	batch := []model.GameEvent{model.NewMovementEvent(99, model.Position{X: 5})}

	result := phases.ProcessMovement(batch, entities, 1)

	if result.EntitiesMoved != 0 {
		t.Fatalf("expected 0 entities moved, got %d", result.EntitiesMoved)
	}
}
