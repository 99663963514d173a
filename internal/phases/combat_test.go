package phases_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/phases"
)

func TestProcessCombatAppliesMitigationAndThreat(t *testing.T) {
	entities := newEntities(1, 2)
	entities[2].Combat.Armor = 0.5
	batch := []model.GameEvent{model.NewAttackEvent(1, 2, 100, model.DamagePhysical)}

	result := phases.ProcessCombat(batch, entities, 1)

	if result.AttacksProcessed != 1 || result.AttacksMissed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if entities[2].Combat.Health != 50 {
		t.Fatalf("expected 50 damage after 50%% mitigation, got health=%d", entities[2].Combat.Health)
	}
	if entities[2].Combat.ThreatTable[1] != 50 {
		t.Fatalf("expected threat to equal damage dealt, got %v", entities[2].Combat.ThreatTable[1])
	}
}

func TestProcessCombatMitigationIsClampedToMax(t *testing.T) {
	entities := newEntities(1, 2)
	entities[2].Combat.Armor = 5.0
	batch := []model.GameEvent{model.NewAttackEvent(1, 2, 100, model.DamagePhysical)}

	phases.ProcessCombat(batch, entities, 1)

	if entities[2].Combat.Health != 75 {
		t.Fatalf("expected mitigation clamped to 0.75, leaving 25 damage, got health=%d", entities[2].Combat.Health)
	}
}

func TestProcessCombatMissesOnDeadOrAbsentParticipants(t *testing.T) {
	entities := newEntities(1)
	batch := []model.GameEvent{model.NewAttackEvent(1, 99, 10, model.DamagePhysical)}

	result := phases.ProcessCombat(batch, entities, 1)

	if result.AttacksMissed != 1 || result.AttacksProcessed != 0 {
		t.Fatalf("expected miss against absent target, got %+v", result)
	}
}

func TestProcessCombatKillAndSubsequentAttacksMiss(t *testing.T) {
	entities := newEntities(1, 2)
	entities[2].Combat.Health = 10
	batch := []model.GameEvent{
		model.NewAttackEvent(1, 2, 100, model.DamagePhysical),
		model.NewAttackEvent(1, 2, 100, model.DamagePhysical),
	}

	result := phases.ProcessCombat(batch, entities, 1)

	if result.Kills != 1 {
		t.Fatalf("expected exactly 1 kill, got %+v", result)
	}
	if result.AttacksProcessed != 1 || result.AttacksMissed != 1 {
		t.Fatalf("expected second attack on dead target to miss, got %+v", result)
	}
	if entities[2].Combat.IsAlive {
		t.Fatalf("expected target to be dead")
	}
}

func TestProcessCombatNPCAutoAttacksMaxThreatTarget(t *testing.T) {
	entities := newEntities(1, 2, 3)
	npc := model.NewNPC(10)
	npc.Combat.BaseAttackDamage = 20
	npc.Combat.ThreatTable = map[uint64]float32{1: 5, 2: 50, 3: 10}
	entities[10] = &npc

	result := phases.ProcessCombat(nil, entities, 1)

	if result.NPCAttacks != 1 {
		t.Fatalf("expected exactly one NPC auto-attack, got %+v", result)
	}
	if entities[2].Combat.Health != 80 {
		t.Fatalf("expected NPC to attack the max-threat target (2), got health=%d", entities[2].Combat.Health)
	}
	if entities[1].Combat.Health != 100 || entities[3].Combat.Health != 100 {
		t.Fatalf("expected non-max-threat targets untouched")
	}
}

func TestProcessCombatThreatCleanupRemovesDeadEntityKeys(t *testing.T) {
	entities := newEntities(1, 2)
	entities[1].Combat.ThreatTable = map[uint64]float32{2: 10}
	entities[2].Combat.IsAlive = false

	phases.ProcessCombat(nil, entities, 1)

	if _, ok := entities[1].Combat.ThreatTable[2]; ok {
		t.Fatalf("expected dead entity's key removed from threat table")
	}
}
