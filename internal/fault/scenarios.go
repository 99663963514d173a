package fault

import (
	"fmt"
	"sync"
	"time"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/telemetry"
	"github.com/norumander/wow-server-sim/internal/zone"
)

func uintParam(params map[string]any, key string, fallback uint64) uint64 {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case uint64:
		return n
	case uint32:
		return uint64(n)
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case float64:
		return uint64(n)
	default:
		return fallback
	}
}

func floodPosition(tick uint64, index int, sessionID uint64) model.Position {
	x := float64((tick*31 + uint64(index)*7 + sessionID) % 1000)
	y := float64((tick*13 + uint64(index)*11 + sessionID) % 1000)
	return model.Position{X: x, Y: y}
}

// base carries the id/description/mode/activation counters every scenario
// shares.
type base struct {
	mu          sync.Mutex
	id          string
	description string
	mode        Mode
	active      bool
	activations uint64
	params      map[string]any
}

func (b *base) ID() string          { return b.id }
func (b *base) Description() string { return b.description }
func (b *base) Mode() Mode           { return b.mode }
func (b *base) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// statusConfig returns the active parameters. The caller must hold b.mu.
func (b *base) statusConfig() map[string]any {
	if !b.active {
		return map[string]any{}
	}
	return b.params
}

// LatencySpike blocks the caller for delay_ms on each dispatched tick.
type LatencySpike struct {
	base
	delayMS uint64
}

func NewLatencySpike() *LatencySpike {
	return &LatencySpike{base: base{id: "latency-spike", description: "Add configurable delay to tick processing", mode: ModeTickScoped}}
}

func (f *LatencySpike) Activate(cfg Config) bool {
	f.mu.Lock()
	f.active = true
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.delayMS = uintParam(cfg.Params, "delay_ms", 200)
	return true
}

func (f *LatencySpike) Deactivate() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
}

func (f *LatencySpike) OnTick(tick uint64, z *zone.Zone) {
	if !f.IsActive() {
		return
	}
	time.Sleep(time.Duration(f.delayMS) * time.Millisecond)
}

func (f *LatencySpike) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// SessionCrash removes one entity (the smallest id, chosen deterministically
// since Go map iteration order is randomized) on the first dispatch of an
// activation, and is a no-op thereafter.
type SessionCrash struct {
	base
	fired bool
}

func NewSessionCrash() *SessionCrash {
	return &SessionCrash{base: base{id: "session-crash", description: "Force-terminate a player session", mode: ModeTickScoped}}
}

func (f *SessionCrash) Activate(cfg Config) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = true
	f.fired = false
	f.activations++
	f.params = cfg.Params
	return true
}

func (f *SessionCrash) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.fired = false
}

func (f *SessionCrash) OnTick(tick uint64, z *zone.Zone) {
	f.mu.Lock()
	fired := f.fired
	f.mu.Unlock()
	if !f.IsActive() || fired || z == nil {
		return
	}
	entities := z.Entities()
	if len(entities) == 0 {
		return
	}
	victimID := entities[0].ID
	z.RemoveEntity(victimID)

	f.mu.Lock()
	f.fired = true
	f.mu.Unlock()

	telemetry.EventRecord("fault", "session crashed by fault injection", tick, map[string]any{
		"faultId":   f.id,
		"sessionId": victimID,
		"zoneId":    z.ID,
	})
}

func (f *SessionCrash) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// EventQueueFlood pushes multiplier synthetic Movement events per entity
// every dispatch, with deterministic positions derived from (tick, index,
// session_id).
type EventQueueFlood struct {
	base
	multiplier uint64
}

func NewEventQueueFlood() *EventQueueFlood {
	return &EventQueueFlood{base: base{id: "event-queue-flood", description: "Inject multiplied synthetic events into zone queue", mode: ModeTickScoped}}
}

func (f *EventQueueFlood) Activate(cfg Config) bool {
	f.mu.Lock()
	f.active = true
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.multiplier = uintParam(cfg.Params, "multiplier", 10)
	return true
}

func (f *EventQueueFlood) Deactivate() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
}

func (f *EventQueueFlood) OnTick(tick uint64, z *zone.Zone) {
	if !f.IsActive() || z == nil {
		return
	}
	floodZone(z, tick, f.multiplier)
	telemetry.EventRecord("fault", "event queue flooded", tick, map[string]any{
		"faultId":        f.id,
		"zoneId":         z.ID,
		"eventsInjected": int(f.multiplier) * z.EntityCount(),
	})
}

func floodZone(z *zone.Zone, tick uint64, multiplier uint64) {
	entities := z.Entities()
	index := 0
	for _, e := range entities {
		for m := uint64(0); m < multiplier; m++ {
			z.PushEvent(model.NewMovementEvent(e.ID, floodPosition(tick, index, e.ID)))
			index++
		}
	}
}

func (f *EventQueueFlood) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// MemoryPressure is Ambient: it allocates and touches megabytes*1MiB on
// activate, and releases them on deactivate. It has no per-tick behavior.
type MemoryPressure struct {
	base
	buffers [][]byte
}

func NewMemoryPressure() *MemoryPressure {
	return &MemoryPressure{base: base{id: "memory-pressure", description: "Allocate and hold large memory buffers", mode: ModeAmbient}}
}

const oneMiB = 1024 * 1024

func (f *MemoryPressure) Activate(cfg Config) bool {
	megabytes := uintParam(cfg.Params, "megabytes", 64)

	buffers := make([][]byte, megabytes)
	for i := range buffers {
		buf := make([]byte, oneMiB)
		for j := range buf {
			buf[j] = 0xAB
		}
		buffers[i] = buf
	}

	f.mu.Lock()
	f.active = true
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.buffers = buffers

	telemetry.EventRecord("fault", "memory pressure applied", 0, map[string]any{
		"faultId":        f.id,
		"megabytes":      megabytes,
		"bytesAllocated": f.bytesAllocated(),
	})
	return true
}

func (f *MemoryPressure) Deactivate() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
	f.buffers = nil
	telemetry.EventRecord("fault", "memory pressure released", 0, map[string]any{"faultId": f.id})
}

func (f *MemoryPressure) bytesAllocated() int {
	return len(f.buffers) * oneMiB
}

func (f *MemoryPressure) OnTick(tick uint64, z *zone.Zone) {}

func (f *MemoryPressure) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// CascadingZoneFailure crashes source_zone on its first dispatch (by
// panicking, so the zone isolation guard catches it), then floods
// target_zone on every dispatch afterward.
type CascadingZoneFailure struct {
	base
	sourceZone      uint64
	targetZone      uint64
	floodMultiplier uint64
	firedCrash      bool
	sourceCrashed   bool
}

func NewCascadingZoneFailure() *CascadingZoneFailure {
	return &CascadingZoneFailure{base: base{id: "cascading-zone-failure", description: "Crash source zone, flood target zone with events", mode: ModeTickScoped}}
}

func (f *CascadingZoneFailure) Activate(cfg Config) bool {
	f.mu.Lock()
	f.active = true
	f.firedCrash = false
	f.sourceCrashed = false
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.sourceZone = uintParam(cfg.Params, "source_zone", 1)
	f.targetZone = uintParam(cfg.Params, "target_zone", 2)
	f.floodMultiplier = uintParam(cfg.Params, "flood_multiplier", 10)
	return true
}

func (f *CascadingZoneFailure) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.firedCrash = false
	f.sourceCrashed = false
}

func (f *CascadingZoneFailure) OnTick(tick uint64, z *zone.Zone) {
	if !f.IsActive() || z == nil {
		return
	}

	f.mu.Lock()
	firedCrash := f.firedCrash
	sourceCrashed := f.sourceCrashed
	f.mu.Unlock()

	if uint64(z.ID) == f.sourceZone && !firedCrash {
		f.mu.Lock()
		f.firedCrash = true
		f.sourceCrashed = true
		f.mu.Unlock()
		telemetry.EventRecord("fault", "cascading failure: crashing source zone", tick, map[string]any{
			"faultId":    f.id,
			"sourceZone": f.sourceZone,
			"targetZone": f.targetZone,
		})
		panic(fmt.Sprintf("cascading zone failure: source zone %d crash injected", f.sourceZone))
	}

	if uint64(z.ID) == f.targetZone && sourceCrashed {
		floodZone(z, tick, f.floodMultiplier)
		telemetry.EventRecord("fault", "cascading failure: target zone flooded", tick, map[string]any{
			"faultId":        f.id,
			"targetZone":     f.targetZone,
			"eventsInjected": int(f.floodMultiplier) * z.EntityCount(),
		})
	}
}

func (f *CascadingZoneFailure) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// SlowLeak maintains a growing per-tick delay: every increment_every
// dispatches, current_delay_ms grows by increment_ms, and every dispatch
// blocks for current_delay_ms.
type SlowLeak struct {
	base
	incrementMS    uint64
	incrementEvery uint64
	currentDelayMS uint64
	tickCounter    uint64
}

func NewSlowLeak() *SlowLeak {
	return &SlowLeak{base: base{id: "slow-leak", description: "Increment tick processing delay over time", mode: ModeTickScoped}}
}

func (f *SlowLeak) Activate(cfg Config) bool {
	f.mu.Lock()
	f.active = true
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.incrementMS = uintParam(cfg.Params, "increment_ms", 1)
	f.incrementEvery = uintParam(cfg.Params, "increment_every", 100)
	f.currentDelayMS = 0
	f.tickCounter = 0
	return true
}

func (f *SlowLeak) Deactivate() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
	f.currentDelayMS = 0
	f.tickCounter = 0
}

func (f *SlowLeak) OnTick(tick uint64, z *zone.Zone) {
	if !f.IsActive() {
		return
	}
	f.tickCounter++
	if f.incrementEvery > 0 && f.tickCounter%f.incrementEvery == 0 {
		f.currentDelayMS += f.incrementMS
	}
	if f.currentDelayMS > 0 {
		time.Sleep(time.Duration(f.currentDelayMS) * time.Millisecond)
	}
}

func (f *SlowLeak) CurrentDelayMS() uint64 { return f.currentDelayMS }

func (f *SlowLeak) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// SplitBrain adds phantom_count NPC entities (once per zone per activation)
// and, every dispatch, pushes a Movement event per phantom whose target
// diverges by zone id parity.
type SplitBrain struct {
	base
	phantomCount   uint64
	phantomBaseID  uint64
	tickCounter    uint64
	phantomsMade   map[uint32]bool
}

func NewSplitBrain() *SplitBrain {
	return &SplitBrain{base: base{id: "split-brain", description: "Create phantom entities with divergent state across zones", mode: ModeTickScoped}}
}

func (f *SplitBrain) Activate(cfg Config) bool {
	f.mu.Lock()
	f.active = true
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.phantomCount = uintParam(cfg.Params, "phantom_count", 2)
	f.phantomBaseID = uintParam(cfg.Params, "phantom_base_id", 2000001)
	f.tickCounter = 0
	f.phantomsMade = make(map[uint32]bool)
	return true
}

func (f *SplitBrain) Deactivate() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
	f.phantomsMade = nil
	f.tickCounter = 0
}

func (f *SplitBrain) OnTick(tick uint64, z *zone.Zone) {
	if !f.IsActive() || z == nil {
		return
	}
	f.tickCounter++

	if !f.phantomsMade[z.ID] {
		for i := uint64(0); i < f.phantomCount; i++ {
			phantomID := f.phantomBaseID + i
			_ = z.AddEntity(model.NewNPC(phantomID))
		}
		f.phantomsMade[z.ID] = true
		telemetry.EventRecord("fault", "split brain: phantoms created", tick, map[string]any{
			"faultId":      f.id,
			"zoneId":       z.ID,
			"phantomCount": f.phantomCount,
		})
	}

	for i := uint64(0); i < f.phantomCount; i++ {
		phantomID := f.phantomBaseID + i
		var pos model.Position
		if z.ID%2 == 1 {
			pos = model.Position{X: float64(f.tickCounter * 10)}
		} else {
			pos = model.Position{Y: float64(f.tickCounter * 10)}
		}
		z.PushEvent(model.NewMovementEvent(phantomID, pos))
	}

	telemetry.EventRecord("fault", "split brain: divergent state", tick, map[string]any{
		"faultId":     f.id,
		"zoneId":      z.ID,
		"tickCounter": f.tickCounter,
	})
}

func (f *SplitBrain) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}

// ThunderingHerd removes every Player entity from a zone once, then
// re-adds them all once current_tick reaches disconnect_tick +
// reconnect_delay_ticks.
type ThunderingHerd struct {
	base
	reconnectDelayTicks uint64
	disconnectDone      map[uint32]bool
	storedPlayers       map[uint32][]uint64
	disconnectTick      uint64
	reconnectDone       map[uint32]bool
}

func NewThunderingHerd() *ThunderingHerd {
	return &ThunderingHerd{base: base{id: "thundering-herd", description: "Mass disconnect all players, then simultaneous reconnect", mode: ModeTickScoped}}
}

func (f *ThunderingHerd) Activate(cfg Config) bool {
	f.mu.Lock()
	f.active = true
	f.activations++
	f.params = cfg.Params
	f.mu.Unlock()
	f.reconnectDelayTicks = uintParam(cfg.Params, "reconnect_delay_ticks", 20)
	f.disconnectDone = make(map[uint32]bool)
	f.storedPlayers = make(map[uint32][]uint64)
	f.disconnectTick = 0
	f.reconnectDone = make(map[uint32]bool)
	return true
}

func (f *ThunderingHerd) Deactivate() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
	f.disconnectDone = nil
	f.storedPlayers = nil
	f.disconnectTick = 0
	f.reconnectDone = nil
}

func (f *ThunderingHerd) OnTick(tick uint64, z *zone.Zone) {
	if !f.IsActive() || z == nil {
		return
	}

	if !f.disconnectDone[z.ID] {
		f.disconnectDone[z.ID] = true
		if f.disconnectTick == 0 {
			f.disconnectTick = tick
		}

		var playerIDs []uint64
		for _, e := range z.Entities() {
			if e.Type == model.EntityPlayer {
				playerIDs = append(playerIDs, e.ID)
			}
		}
		for _, pid := range playerIDs {
			z.RemoveEntity(pid)
		}
		f.storedPlayers[z.ID] = playerIDs

		telemetry.EventRecord("fault", "thundering herd: mass disconnect", tick, map[string]any{
			"faultId":             f.id,
			"zoneId":              z.ID,
			"playersDisconnected": len(playerIDs),
		})
		return
	}

	if !f.reconnectDone[z.ID] && f.disconnectTick > 0 && tick >= f.disconnectTick+f.reconnectDelayTicks {
		f.reconnectDone[z.ID] = true
		for _, pid := range f.storedPlayers[z.ID] {
			_ = z.AddEntity(model.NewPlayer(pid))
		}
		telemetry.EventRecord("fault", "thundering herd: mass reconnect", tick, map[string]any{
			"faultId":            f.id,
			"zoneId":             z.ID,
			"playersReconnected": len(f.storedPlayers[z.ID]),
		})
	}
}

func (f *ThunderingHerd) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{ID: f.id, Mode: f.mode, Active: f.active, Activations: f.activations, Config: f.statusConfig()}
}
