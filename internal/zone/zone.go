// Package zone implements a single simulation region: an entity map, a
// drain-style event queue, and the three-phase tick pipeline wrapped in an
// isolation guard that turns a panicking hook or processor into a state
// transition instead of a crashed process.
package zone

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/phases"
	"github.com/norumander/wow-server-sim/internal/queue"
	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// State is a zone's health state, driven by the tick isolation guard's
// recovery arc: Crashed -> Degraded -> Active.
type State string

const (
	StateActive   State = "active"
	StateDegraded State = "degraded"
	StateCrashed  State = "crashed"
)

// Hook is an installable extension point invoked from inside the tick
// isolation guard. A panicking hook is recovered by the guard, not by the
// hook itself.
type Hook func(z *Zone)

// TickResult summarizes one tick's outcome for telemetry and coordinator
// aggregation.
type TickResult struct {
	Tick            uint64
	EventsProcessed int
	Movement        phases.MovementResult
	SpellCast       phases.SpellCastResult
	Combat          phases.CombatResult
	HadError        bool
	ErrorMessage    string
	DurationNanos   int64
}

// Zone owns one simulation region. All mutation of its entity map and event
// queue happens on the single goroutine that calls Tick; PushEvent is the
// only method safe to call from other goroutines.
type Zone struct {
	ID uint32

	mu       sync.RWMutex
	entities map[uint64]*model.Entity
	events   queue.EventQueue

	preTick  Hook
	postTick Hook

	state       State
	totalTicks  uint64
	errorCount  uint64
	lastTickDur time.Duration
}

// New constructs an empty, Active zone with the given id.
func New(id uint32) *Zone {
	return &Zone{
		ID:       id,
		entities: make(map[uint64]*model.Entity),
		state:    StateActive,
	}
}

// SetPreTickHook installs the pre-tick extension point (typically the fault
// registry's execute_pre_tick_faults). Pass nil to clear it.
func (z *Zone) SetPreTickHook(hook Hook) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.preTick = hook
}

// SetPostTickHook installs the post-tick extension point. Pass nil to clear
// it.
func (z *Zone) SetPostTickHook(hook Hook) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.postTick = hook
}

// AddEntity inserts e. Fails if an entity with the same id is already
// present.
func (z *Zone) AddEntity(e model.Entity) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, exists := z.entities[e.ID]; exists {
		return fmt.Errorf("zone %d: entity %d already present", z.ID, e.ID)
	}
	stored := e
	z.entities[e.ID] = &stored
	return nil
}

// RemoveEntity removes the entity with id, if present.
func (z *Zone) RemoveEntity(id uint64) {
	z.mu.Lock()
	defer z.mu.Unlock()
	delete(z.entities, id)
}

// TakeEntity removes and returns the entity with id, preserving all
// sub-state, for use by cross-zone transfer. The second return value is
// false if no such entity exists.
func (z *Zone) TakeEntity(id uint64) (model.Entity, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	e, ok := z.entities[id]
	if !ok {
		return model.Entity{}, false
	}
	taken := e.Clone()
	delete(z.entities, id)
	return taken, true
}

// HasEntity reports whether id is currently present.
func (z *Zone) HasEntity(id uint64) bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	_, ok := z.entities[id]
	return ok
}

// EntityCount reports the number of entities currently in the zone.
func (z *Zone) EntityCount() int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return len(z.entities)
}

// Entities returns an immutable value-copy snapshot of every entity,
// ordered by ascending id. Go map iteration order is randomized per
// process, so this explicit sort is what gives callers an actual,
// repeatable order.
func (z *Zone) Entities() []model.Entity {
	z.mu.RLock()
	defer z.mu.RUnlock()
	ids := make([]uint64, 0, len(z.entities))
	for id := range z.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, z.entities[id].Clone())
	}
	return out
}

// PushEvent is the producer-side entry point into the zone's drain queue.
// Safe for concurrent use from any goroutine.
func (z *Zone) PushEvent(event model.GameEvent) {
	z.events.Push(event)
}

// State reports the zone's current health state.
func (z *Zone) State() State {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.state
}

// Counters is a snapshot of the zone's lifetime tick bookkeeping.
type Counters struct {
	TotalTicks      uint64
	ErrorCount      uint64
	LastTickDuration time.Duration
	State           State
}

// Snapshot returns the zone's current counters.
func (z *Zone) Snapshot() Counters {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return Counters{
		TotalTicks:       z.totalTicks,
		ErrorCount:       z.errorCount,
		LastTickDuration: z.lastTickDur,
		State:            z.state,
	}
}

// Tick executes one tick of the three-phase pipeline under an isolation
// guard. A panic anywhere inside the guarded section (a hook, or a phase
// processor) is recovered, converted into a Crashed transition plus an
// error telemetry entry, and never escapes Tick.
func (z *Zone) Tick(tick uint64) TickResult {
	start := time.Now()
	result := TickResult{Tick: tick}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.HadError = true
				result.ErrorMessage = fmt.Sprintf("%v", r)
			}
		}()
		z.runGuardedTick(tick, &result)
	}()

	z.mu.Lock()
	z.totalTicks++
	z.lastTickDur = time.Since(start)
	result.DurationNanos = z.lastTickDur.Nanoseconds()
	if result.HadError {
		z.errorCount++
		z.state = StateCrashed
	} else {
		switch z.state {
		case StateCrashed:
			z.state = StateDegraded
		case StateDegraded:
			z.state = StateActive
		}
	}
	state := z.state
	z.mu.Unlock()

	if result.HadError {
		telemetry.Error("zone", "tick failed", tick, map[string]any{
			"zoneId": z.ID,
			"error":  result.ErrorMessage,
		})
	} else {
		telemetry.Metric("zone", "tick completed", tick, map[string]any{
			"zoneId":           z.ID,
			"state":            string(state),
			"eventsProcessed":  result.EventsProcessed,
			"entitiesMoved":    result.Movement.EntitiesMoved,
			"castsStarted":     result.SpellCast.CastsStarted,
			"castsCompleted":   result.SpellCast.CastsCompleted,
			"attacksProcessed": result.Combat.AttacksProcessed,
			"kills":            result.Combat.Kills,
			"durationNanos":    result.DurationNanos,
		})
	}

	return result
}

// runGuardedTick runs the pre-hook, drain, three phases, and post-hook. Any
// panic here propagates to the recover() in Tick.
func (z *Zone) runGuardedTick(tick uint64, result *TickResult) {
	z.mu.RLock()
	preTick := z.preTick
	postTick := z.postTick
	z.mu.RUnlock()

	if preTick != nil {
		preTick(z)
	}

	batch := z.events.Drain()
	result.EventsProcessed = len(batch)

	func() {
		z.mu.Lock()
		defer z.mu.Unlock()
		result.Movement = phases.ProcessMovement(batch, z.entities, tick)
		result.SpellCast = phases.ProcessSpellCast(batch, z.entities, tick)
		result.Combat = phases.ProcessCombat(batch, z.entities, tick)
	}()

	if postTick != nil {
		postTick(z)
	}
}
