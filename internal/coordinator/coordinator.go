// Package coordinator routes sessions to zones and aggregates per-tick
// results across every zone.
package coordinator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/telemetry"
	"github.com/norumander/wow-server-sim/internal/zone"
)

// NoZone is the sentinel returned by SessionZone for an unassigned session.
const NoZone uint32 = 0

// Coordinator owns the zone set and the session-to-zone routing table.
type Coordinator struct {
	mu       sync.RWMutex
	zones    map[uint32]*zone.Zone
	sessions map[uint64]uint32
}

// New constructs an empty coordinator.
func New() *Coordinator {
	return &Coordinator{
		zones:    make(map[uint32]*zone.Zone),
		sessions: make(map[uint64]uint32),
	}
}

// CreateZone constructs and registers a new zone with the given id. Fails if
// a zone with that id already exists.
func (c *Coordinator) CreateZone(id uint32) (*zone.Zone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.zones[id]; exists {
		return nil, fmt.Errorf("coordinator: zone %d already exists", id)
	}
	z := zone.New(id)
	c.zones[id] = z
	return z, nil
}

// GetZone returns the zone with id, if any.
func (c *Coordinator) GetZone(id uint32) (*zone.Zone, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	z, ok := c.zones[id]
	return z, ok
}

// ZoneCount returns the number of registered zones.
func (c *Coordinator) ZoneCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.zones)
}

// ZoneIDs returns every registered zone id in ascending order, the
// deterministic iteration order TickAll and other aggregate operations use.
func (c *Coordinator) ZoneIDs() []uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]uint32, 0, len(c.zones))
	for id := range c.zones {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AssignSession creates a fresh Player entity for sid in zone zid and
// records the mapping. Fails if the zone is missing or sid is already
// assigned.
func (c *Coordinator) AssignSession(sid uint64, zid uint32) error {
	c.mu.Lock()
	z, zoneOK := c.zones[zid]
	_, alreadyAssigned := c.sessions[sid]
	c.mu.Unlock()

	if !zoneOK {
		return fmt.Errorf("coordinator: zone %d does not exist", zid)
	}
	if alreadyAssigned {
		return fmt.Errorf("coordinator: session %d already assigned", sid)
	}

	if err := z.AddEntity(model.NewPlayer(sid)); err != nil {
		return err
	}

	c.mu.Lock()
	c.sessions[sid] = zid
	c.mu.Unlock()
	return nil
}

// RemoveSession removes sid's entity from its zone and forgets the mapping.
// No-op if sid is unassigned.
func (c *Coordinator) RemoveSession(sid uint64) {
	c.mu.Lock()
	zid, ok := c.sessions[sid]
	if ok {
		delete(c.sessions, sid)
	}
	z := c.zones[zid]
	c.mu.Unlock()

	if ok && z != nil {
		z.RemoveEntity(sid)
	}
}

// TransferSession moves sid's entity from its current zone into targetZID,
// preserving full sub-state. On target rejection, the entity is rolled back
// into the source zone using the already-taken value (it is never
// re-taken), and the mapping is left unchanged.
func (c *Coordinator) TransferSession(sid uint64, targetZID uint32) error {
	c.mu.RLock()
	sourceZID, assigned := c.sessions[sid]
	sourceZone, sourceOK := c.zones[sourceZID]
	targetZone, targetOK := c.zones[targetZID]
	c.mu.RUnlock()

	if !assigned || !sourceOK {
		return fmt.Errorf("coordinator: session %d has no current zone", sid)
	}
	if !targetOK {
		return fmt.Errorf("coordinator: target zone %d does not exist", targetZID)
	}

	entity, ok := sourceZone.TakeEntity(sid)
	if !ok {
		return fmt.Errorf("coordinator: session %d entity missing from source zone", sid)
	}

	if err := targetZone.AddEntity(entity); err != nil {
		if rollbackErr := sourceZone.AddEntity(entity); rollbackErr != nil {
			telemetry.Error("coordinator", "transfer rollback failed", 0, map[string]any{
				"sessionId": sid,
				"error":     rollbackErr.Error(),
			})
		}
		return fmt.Errorf("coordinator: transfer rejected by target zone %d: %w", targetZID, err)
	}

	c.mu.Lock()
	c.sessions[sid] = targetZID
	c.mu.Unlock()
	return nil
}

// SessionZone returns the zone id sid is currently assigned to, or NoZone if
// unassigned.
func (c *Coordinator) SessionZone(sid uint64) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[sid]
}

// RouteEvents pushes each event into its session's zone queue. Events for
// unassigned sessions are dropped with an error telemetry entry. Returns the
// number of events routed.
func (c *Coordinator) RouteEvents(batch []model.GameEvent) int {
	routed := 0
	for _, ev := range batch {
		c.mu.RLock()
		zid, ok := c.sessions[ev.SessionID]
		var z *zone.Zone
		if ok {
			z = c.zones[zid]
		}
		c.mu.RUnlock()

		if !ok || z == nil {
			telemetry.Error("coordinator", "event routed to unassigned session", 0, map[string]any{
				"sessionId": ev.SessionID,
			})
			continue
		}
		z.PushEvent(ev)
		routed++
	}
	return routed
}

// TickAllResult aggregates the outcome of ticking every zone once.
type TickAllResult struct {
	Tick           uint64
	ZoneResults    map[uint32]zone.TickResult
	ZonesWithErrors int
}

// TickAll ticks every zone, in ascending zone-id order, and aggregates the
// per-zone results.
func (c *Coordinator) TickAll(tick uint64) TickAllResult {
	result := TickAllResult{Tick: tick, ZoneResults: make(map[uint32]zone.TickResult)}
	for _, zid := range c.ZoneIDs() {
		c.mu.RLock()
		z := c.zones[zid]
		c.mu.RUnlock()
		if z == nil {
			continue
		}
		tickResult := z.Tick(tick)
		result.ZoneResults[zid] = tickResult
		if tickResult.HadError {
			result.ZonesWithErrors++
		}
	}
	return result
}
