// Package phases implements the three-phase tick pipeline: movement, then
// spell-cast, then combat. Each processor is a stateless function over a
// shared event batch and entity map for one tick.
package phases

import (
	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// MovementResult reports how many distinct sessions moved this tick.
type MovementResult struct {
	EntitiesMoved int
}

// ProcessMovement applies every Movement event in batch order. Multiple
// events for the same session within one batch: last write wins. Events for
// unknown sessions are dropped with an error telemetry record.
func ProcessMovement(batch []model.GameEvent, entities map[uint64]*model.Entity, tick uint64) MovementResult {
	moved := make(map[uint64]struct{})
	for _, ev := range batch {
		if ev.Kind != model.EventMovement || ev.Movement == nil {
			continue
		}
		entity, ok := entities[ev.SessionID]
		if !ok {
			telemetry.Error("movement", "movement event for unknown session", tick, map[string]any{
				"sessionId": ev.SessionID,
			})
			continue
		}
		entity.Pos = ev.Movement.Target
		entity.Cast.MovedThisTick = true
		moved[ev.SessionID] = struct{}{}
	}
	return MovementResult{EntitiesMoved: len(moved)}
}
