package model

// EventKind enumerates the three fixed game event variants. The set is
// closed, so events are modeled as one struct with a kind tag and optional
// per-variant payloads rather than with interface dispatch.
type EventKind string

const (
	EventMovement  EventKind = "movement"
	EventSpellCast EventKind = "spell_cast"
	EventCombat    EventKind = "combat"
)

// SpellAction distinguishes the two spell-cast sub-actions.
type SpellAction string

const (
	SpellActionCastStart SpellAction = "cast_start"
	SpellActionInterrupt SpellAction = "interrupt"
)

// CombatAction is presently always Attack; kept as a type for parity with
// the wire schema and room to grow.
type CombatAction string

const (
	CombatActionAttack CombatAction = "attack"
)

// DamageType selects which mitigation stat applies to an attack.
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagical  DamageType = "magical"
)

// MovementPayload carries a movement event's destination.
type MovementPayload struct {
	Target Position `json:"target"`
}

// SpellCastPayload carries a spell-cast event's sub-action and parameters.
// SpellID and CastTimeTicks are only meaningful for CastStart.
type SpellCastPayload struct {
	Action        SpellAction `json:"action"`
	SpellID       uint32      `json:"spellId,omitempty"`
	CastTimeTicks uint32      `json:"castTimeTicks,omitempty"`
}

// CombatPayload carries an attack event's target and damage parameters.
type CombatPayload struct {
	Action     CombatAction `json:"action"`
	TargetID   uint64       `json:"targetId"`
	BaseDamage int32        `json:"baseDamage"`
	DamageType DamageType   `json:"damageType"`
}

// GameEvent is a single-owner, move-only unit of simulation input: the
// producer (network thread or a fault scenario) relinquishes it to a zone's
// event queue, and the consumer (the zone's tick) drains it as part of a
// batch.
type GameEvent struct {
	SessionID uint64            `json:"sessionId"`
	Kind      EventKind         `json:"type"`
	Movement  *MovementPayload  `json:"movement,omitempty"`
	SpellCast *SpellCastPayload `json:"spellCast,omitempty"`
	Combat    *CombatPayload    `json:"combat,omitempty"`
}

// NewMovementEvent builds a Movement event for the given session.
func NewMovementEvent(sessionID uint64, target Position) GameEvent {
	return GameEvent{SessionID: sessionID, Kind: EventMovement, Movement: &MovementPayload{Target: target}}
}

// NewCastStartEvent builds a SpellCast/CastStart event.
func NewCastStartEvent(sessionID uint64, spellID, castTimeTicks uint32) GameEvent {
	return GameEvent{
		SessionID: sessionID,
		Kind:      EventSpellCast,
		SpellCast: &SpellCastPayload{Action: SpellActionCastStart, SpellID: spellID, CastTimeTicks: castTimeTicks},
	}
}

// NewInterruptEvent builds a SpellCast/Interrupt event.
func NewInterruptEvent(sessionID uint64) GameEvent {
	return GameEvent{SessionID: sessionID, Kind: EventSpellCast, SpellCast: &SpellCastPayload{Action: SpellActionInterrupt}}
}

// NewAttackEvent builds a Combat/Attack event.
func NewAttackEvent(sessionID, targetID uint64, baseDamage int32, damageType DamageType) GameEvent {
	return GameEvent{
		SessionID: sessionID,
		Kind:      EventCombat,
		Combat:    &CombatPayload{Action: CombatActionAttack, TargetID: targetID, BaseDamage: baseDamage, DamageType: damageType},
	}
}
