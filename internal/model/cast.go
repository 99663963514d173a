package model

// GlobalCooldownTicks is the GCD duration: 30 ticks = 1.5s at the default 20Hz
// tick rate.
const GlobalCooldownTicks = 30

// CastState tracks an entity's spell-casting progress.
//
// Invariant: IsCasting implies SpellID != 0 && CastTicksRemaining >= 1.
type CastState struct {
	IsCasting          bool   `json:"isCasting"`
	SpellID            uint32 `json:"spellId"`
	CastTicksRemaining uint32 `json:"castTicksRemaining"`
	GCDExpiresTick     uint64 `json:"gcdExpiresTick"`
	MovedThisTick      bool   `json:"-"`
}

// ClearCast resets casting fields without touching GCD or movement flags.
func (c *CastState) ClearCast() {
	c.IsCasting = false
	c.SpellID = 0
	c.CastTicksRemaining = 0
}
