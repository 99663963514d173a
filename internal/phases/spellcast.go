package phases

import (
	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// SpellCastResult tallies the per-tick outcomes the spell-cast processor is
// required to report via telemetry and counters.
type SpellCastResult struct {
	CastsStarted     int
	CastsCompleted   int
	CastsInterrupted int
	GCDBlocked       int
}

// ProcessSpellCast runs the five ordered steps of spell-cast processing
// against the shared event batch and entity map for tick T. Step order is
// load-bearing: a movement and a brand-new cast in the same tick must not
// interrupt the new cast, because step 1 runs before step 4 starts the new
// cast (so it only cancels a cast already in progress), and step 5 clears
// moved_this_tick only at the very end.
func ProcessSpellCast(batch []model.GameEvent, entities map[uint64]*model.Entity, tick uint64) SpellCastResult {
	var result SpellCastResult

	// Step 1: movement cancellation.
	for id, entity := range entities {
		if entity.Cast.MovedThisTick && entity.Cast.IsCasting {
			entity.Cast.ClearCast()
			result.CastsInterrupted++
			telemetry.EventRecord("spellcast", "cast interrupted", tick, map[string]any{
				"entityId": id,
				"reason":   "movement",
			})
		}
	}

	// Step 2: explicit interrupts.
	for _, ev := range batch {
		if ev.Kind != model.EventSpellCast || ev.SpellCast == nil || ev.SpellCast.Action != model.SpellActionInterrupt {
			continue
		}
		entity, ok := entities[ev.SessionID]
		if !ok || !entity.Cast.IsCasting {
			continue
		}
		entity.Cast.ClearCast()
		result.CastsInterrupted++
		telemetry.EventRecord("spellcast", "cast interrupted", tick, map[string]any{
			"entityId": ev.SessionID,
			"reason":   "interrupt",
		})
	}

	// Step 3: advance timers.
	for id, entity := range entities {
		if !entity.Cast.IsCasting {
			continue
		}
		entity.Cast.CastTicksRemaining--
		if entity.Cast.CastTicksRemaining == 0 {
			entity.Cast.IsCasting = false
			entity.Cast.SpellID = 0
			result.CastsCompleted++
			telemetry.EventRecord("spellcast", "cast completed", tick, map[string]any{
				"entityId": id,
			})
		}
	}

	// Step 4: process CastStart events.
	for _, ev := range batch {
		if ev.Kind != model.EventSpellCast || ev.SpellCast == nil || ev.SpellCast.Action != model.SpellActionCastStart {
			continue
		}
		entity, ok := entities[ev.SessionID]
		if !ok {
			continue
		}
		if entity.Cast.GCDExpiresTick > tick {
			result.GCDBlocked++
			telemetry.EventRecord("spellcast", "cast blocked by global cooldown", tick, map[string]any{
				"entityId": ev.SessionID,
				"spellId":  ev.SpellCast.SpellID,
			})
			continue
		}
		entity.Cast.GCDExpiresTick = tick + model.GlobalCooldownTicks

		if ev.SpellCast.CastTimeTicks == 0 {
			result.CastsStarted++
			result.CastsCompleted++
			telemetry.EventRecord("spellcast", "instant cast started", tick, map[string]any{
				"entityId": ev.SessionID,
				"spellId":  ev.SpellCast.SpellID,
			})
			telemetry.EventRecord("spellcast", "cast completed", tick, map[string]any{
				"entityId": ev.SessionID,
				"spellId":  ev.SpellCast.SpellID,
			})
			continue
		}

		entity.Cast.IsCasting = true
		entity.Cast.SpellID = ev.SpellCast.SpellID
		entity.Cast.CastTicksRemaining = ev.SpellCast.CastTimeTicks
		result.CastsStarted++
		telemetry.EventRecord("spellcast", "cast started", tick, map[string]any{
			"entityId": ev.SessionID,
			"spellId":  ev.SpellCast.SpellID,
		})
	}

	// Step 5: clear moved_this_tick on every entity.
	for _, entity := range entities {
		entity.Cast.MovedThisTick = false
	}

	return result
}
