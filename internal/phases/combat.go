package phases

import (
	"math"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// CombatResult tallies the per-tick outcomes the combat processor is
// required to report.
type CombatResult struct {
	AttacksProcessed int
	AttacksMissed    int
	NPCAttacks       int
	Kills            int
	TotalDamageDealt int64
}

// ProcessCombat runs the three ordered steps of combat processing against
// the shared event batch and entity map for tick T.
func ProcessCombat(batch []model.GameEvent, entities map[uint64]*model.Entity, tick uint64) CombatResult {
	var result CombatResult

	// Step 1: process Attack events.
	for _, ev := range batch {
		if ev.Kind != model.EventCombat || ev.Combat == nil || ev.Combat.Action != model.CombatActionAttack {
			continue
		}
		resolveAttack(ev.SessionID, ev.Combat.TargetID, ev.Combat.BaseDamage, ev.Combat.DamageType, entities, tick, &result)
	}

	// Step 2: NPC auto-attack.
	for id, npc := range entities {
		if npc.Type != model.EntityNPC || !npc.Combat.IsAlive {
			continue
		}
		if npc.Combat.BaseAttackDamage <= 0 || len(npc.Combat.ThreatTable) == 0 {
			continue
		}
		targetID, ok := maxThreatLivingTarget(npc.Combat.ThreatTable, entities)
		if !ok {
			continue
		}
		resolveAttack(id, targetID, npc.Combat.BaseAttackDamage, model.DamagePhysical, entities, tick, &result)
		result.NPCAttacks++
	}

	// Step 3: threat cleanup.
	for _, entity := range entities {
		if !entity.Combat.IsAlive {
			continue
		}
		for targetID := range entity.Combat.ThreatTable {
			if target, ok := entities[targetID]; !ok || !target.Combat.IsAlive {
				delete(entity.Combat.ThreatTable, targetID)
			}
		}
	}

	return result
}

// resolveAttack applies one attack's fail-fast checks, mitigation, damage,
// threat, and kill bookkeeping, and records the outcome into result.
func resolveAttack(attackerID, targetID uint64, baseDamage int32, dmgType model.DamageType, entities map[uint64]*model.Entity, tick uint64, result *CombatResult) {
	attacker, ok := entities[attackerID]
	if !ok || !attacker.Combat.IsAlive {
		result.AttacksMissed++
		return
	}
	target, ok := entities[targetID]
	if !ok || !target.Combat.IsAlive {
		result.AttacksMissed++
		return
	}

	var rawMitigation float32
	if dmgType == model.DamagePhysical {
		rawMitigation = target.Combat.Armor
	} else {
		rawMitigation = target.Combat.Resistance
	}
	mitigation := model.ClampMitigation(rawMitigation)
	actualDamage := int32(math.Round(float64(baseDamage) * (1 - float64(mitigation))))

	target.Combat.ApplyDamage(actualDamage)
	if target.Combat.ThreatTable == nil {
		target.Combat.ThreatTable = make(map[uint64]float32)
	}
	target.Combat.ThreatTable[attackerID] += float32(actualDamage)

	if !target.Combat.IsAlive {
		result.Kills++
		telemetry.EventRecord("combat", "entity killed", tick, map[string]any{
			"entityId": targetID,
			"killerId": attackerID,
		})
	}

	result.AttacksProcessed++
	result.TotalDamageDealt += int64(actualDamage)
}

// maxThreatLivingTarget finds the living entity with the maximum threat
// value in table. Ties resolve to whichever maximum is encountered first
// during (randomized) map iteration — a single winner either way.
func maxThreatLivingTarget(table map[uint64]float32, entities map[uint64]*model.Entity) (uint64, bool) {
	var bestID uint64
	var bestThreat float32
	found := false
	for id, threat := range table {
		target, ok := entities[id]
		if !ok || !target.Combat.IsAlive {
			continue
		}
		if !found || threat > bestThreat {
			bestID = id
			bestThreat = threat
			found = true
		}
	}
	return bestID, found
}
