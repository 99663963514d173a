// Package netio implements the network thread's side of the system: plain
// TCP listeners that frame newline-terminated JSON, parse it into the
// shared domain types, and push it across the drain queues to the
// simulation thread. Nothing in this package touches entity state, the
// fault registry, or any zone directly — it only pushes.
package netio

import (
	"github.com/norumander/wow-server-sim/internal/model"
)

// wireEvent is the wire shape for all three GameEvent kinds; fields
// irrelevant to a given type are simply omitted by the sender.
type wireEvent struct {
	Type            string  `json:"type"`
	SessionID       uint64  `json:"session_id"`
	Position        *wireV3 `json:"position,omitempty"`
	Action          string  `json:"action,omitempty"`
	SpellID         uint32  `json:"spell_id,omitempty"`
	CastTimeTicks   uint32  `json:"cast_time_ticks,omitempty"`
	TargetSessionID uint64  `json:"target_session_id,omitempty"`
	BaseDamage      int32   `json:"base_damage,omitempty"`
	DamageType      string  `json:"damage_type,omitempty"`
}

type wireV3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// parseGameEvent decodes a wireEvent into a model.GameEvent. Unknown type
// or enum values return ok=false so the caller can drop the line with a
// warning telemetry entry rather than crash the connection.
func parseGameEvent(w wireEvent) (model.GameEvent, bool) {
	switch w.Type {
	case "movement":
		if w.Position == nil {
			return model.GameEvent{}, false
		}
		pos := model.Position{X: w.Position.X, Y: w.Position.Y, Z: w.Position.Z}
		return model.NewMovementEvent(w.SessionID, pos), true

	case "spell_cast":
		switch w.Action {
		case "CAST_START":
			return model.NewCastStartEvent(w.SessionID, w.SpellID, w.CastTimeTicks), true
		case "INTERRUPT":
			return model.NewInterruptEvent(w.SessionID), true
		default:
			return model.GameEvent{}, false
		}

	case "combat":
		if w.Action != "ATTACK" {
			return model.GameEvent{}, false
		}
		var dmgType model.DamageType
		switch w.DamageType {
		case "PHYSICAL":
			dmgType = model.DamagePhysical
		case "MAGICAL":
			dmgType = model.DamageMagical
		default:
			return model.GameEvent{}, false
		}
		return model.NewAttackEvent(w.SessionID, w.TargetSessionID, w.BaseDamage, dmgType), true

	default:
		return model.GameEvent{}, false
	}
}

// wireControlRequest is the parsed shape of a control-socket request line.
type wireControlRequest struct {
	Command       string         `json:"command"`
	FaultID       string         `json:"fault_id,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	TargetZoneID  *uint32        `json:"target_zone_id,omitempty"`
	DurationTicks *uint64        `json:"duration_ticks,omitempty"`
}

// wireControlResponse is the wire shape written back for a control request.
// Fields is flattened alongside success/error rather than nested, matching
// the shapes in the control-command dispatch table.
type wireControlResponse struct {
	Success       bool
	Error         string
	Fields        map[string]any
	CorrelationID string
}

func (r wireControlResponse) toMap() map[string]any {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["success"] = r.Success
	if r.Error != "" {
		out["error"] = r.Error
	}
	if r.CorrelationID != "" {
		out["correlation_id"] = r.CorrelationID
	}
	return out
}
