// Package fault implements the fault-injection registry and the eight
// deterministic failure scenarios used to exercise the zone isolation guard
// and the rest of the simulation under adverse conditions.
package fault

import "github.com/norumander/wow-server-sim/internal/zone"

// Mode distinguishes faults that fire once per tick regardless of zone
// (Ambient) from faults dispatched through a specific zone's pre-tick hook
// (TickScoped).
type Mode string

const (
	ModeAmbient    Mode = "ambient"
	ModeTickScoped Mode = "tick_scoped"
)

// Config is the activation configuration for a fault: free-form parameters
// plus the two cross-cutting knobs the registry itself interprets
// (target_zone_id restricts a TickScoped fault to one zone; duration_ticks
// triggers auto-expiry).
type Config struct {
	Params        map[string]any
	TargetZoneID  uint32
	DurationTicks uint64
}

// Status is an introspection snapshot of one fault's registration and
// activation state.
type Status struct {
	ID           string
	Mode         Mode
	Active       bool
	Activations  uint64
	TicksElapsed uint64
	Config       map[string]any
}

// Fault is the interface every scenario implements. OnTick receives the
// current tick and the zone it is dispatched against; z is nil for Ambient
// faults, which the registry ticks directly rather than through a zone's
// pre-tick hook.
type Fault interface {
	ID() string
	Description() string
	Mode() Mode
	Activate(cfg Config) bool
	Deactivate()
	IsActive() bool
	OnTick(tick uint64, z *zone.Zone)
	Status() Status
}
