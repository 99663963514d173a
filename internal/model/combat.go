package model

// MaxMitigation caps both armor and resistance: no entity can achieve full
// physical or magical immunity.
const MaxMitigation = 0.75

// DefaultHealth is the starting health and max health for a freshly created
// entity.
const DefaultHealth = 100

// CombatState tracks health, mitigation, and threat for one entity.
//
// Invariants:
//   - Health <= MaxHealth
//   - IsAlive <=> Health > 0, enforced after damage is applied within the
//     same tick (dying entities flip atomically with the damage that kills
//     them).
//   - Threat table keys reference existing entities except transiently
//     during a tick (cleaned up by the combat processor's third step).
type CombatState struct {
	Health           int32            `json:"health"`
	MaxHealth        int32            `json:"maxHealth"`
	Armor            float32          `json:"armor"`
	Resistance       float32          `json:"resistance"`
	IsAlive          bool             `json:"isAlive"`
	BaseAttackDamage int32            `json:"baseAttackDamage"`
	ThreatTable      map[uint64]float32 `json:"threatTable,omitempty"`
}

// NewCombatState returns the default combat state: full health, no
// mitigation, alive, no threat.
func NewCombatState() CombatState {
	return CombatState{
		Health:      DefaultHealth,
		MaxHealth:   DefaultHealth,
		IsAlive:     true,
		ThreatTable: make(map[uint64]float32),
	}
}

// ClampMitigation clamps a raw armor/resistance value into [0, MaxMitigation].
func ClampMitigation(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > MaxMitigation {
		return MaxMitigation
	}
	return v
}

// ApplyDamage subtracts dmg from Health and flips IsAlive atomically with the
// health change. Overkill damage leaves Health below zero (not reset to 0).
func (c *CombatState) ApplyDamage(dmg int32) {
	c.Health -= dmg
	c.IsAlive = c.Health > 0
}
