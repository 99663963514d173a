package fault

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/norumander/wow-server-sim/internal/telemetry"
	"github.com/norumander/wow-server-sim/internal/zone"
)

type activation struct {
	config       Config
	ticksElapsed uint64
}

// Registry owns the set of registered faults and tracks which are
// currently active. A Registry is safe for concurrent use, but in practice
// every call happens on the simulation thread (on_tick and
// execute_pre_tick_faults are invoked from the tick driver and zone hooks
// respectively).
type Registry struct {
	mu          sync.Mutex
	faults      map[string]Fault
	activations map[string]*activation
	currentTick uint64
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		faults:      make(map[string]Fault),
		activations: make(map[string]*activation),
	}
}

// Register inserts f. Fails if a fault with the same id is already
// registered.
func (r *Registry) Register(f Fault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.faults[f.ID()]; exists {
		return fmt.Errorf("fault: %q already registered", f.ID())
	}
	r.faults[f.ID()] = f
	return nil
}

// Activate looks up id, invokes its activator with cfg, and on success
// records a fresh activation (ticks_elapsed = 0). traceID threads the
// originating control request's correlation id into the telemetry record;
// callers with no request context (e.g. tests) may pass the empty string,
// in which case one is minted here so the activation is still traceable.
func (r *Registry) Activate(id string, cfg Config, traceID string) error {
	r.mu.Lock()
	f, ok := r.faults[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("fault: %q not registered", id)
	}
	if !f.Activate(cfg) {
		return fmt.Errorf("fault: %q activation rejected", id)
	}

	r.mu.Lock()
	r.activations[id] = &activation{config: cfg}
	r.mu.Unlock()

	if traceID == "" {
		traceID = uuid.NewString()
	}
	telemetry.EventRecord("fault", "fault activated", r.tick(), map[string]any{
		"faultId":       id,
		"targetZoneId":  cfg.TargetZoneID,
		"durationTicks": cfg.DurationTicks,
		"traceId":       traceID,
	})
	return nil
}

// Deactivate looks up id, calls its deactivator, and erases the activation
// record.
func (r *Registry) Deactivate(id string, traceID string) error {
	r.mu.Lock()
	f, ok := r.faults[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("fault: %q not registered", id)
	}
	f.Deactivate()

	r.mu.Lock()
	delete(r.activations, id)
	r.mu.Unlock()

	if traceID == "" {
		traceID = uuid.NewString()
	}
	telemetry.EventRecord("fault", "fault deactivated", r.tick(), map[string]any{"faultId": id, "traceId": traceID})
	return nil
}

// DeactivateAll deactivates every currently active fault, tagging every
// resulting telemetry record with the same traceID so an operator can
// correlate the whole batch back to one control request.
func (r *Registry) DeactivateAll(traceID string) {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	for _, id := range r.ActiveIDs() {
		_ = r.Deactivate(id, traceID)
	}
}

// ActiveIDs returns the ids of every currently active fault, sorted for
// deterministic iteration.
func (r *Registry) ActiveIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.activations))
	for id := range r.activations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsActive reports whether id is currently active. False if unregistered.
func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	f, ok := r.faults[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return f.IsActive()
}

// Status returns id's current status snapshot. ok is false if id is
// unregistered.
func (r *Registry) Status(id string) (status Status, ok bool) {
	r.mu.Lock()
	f, exists := r.faults[id]
	var ticksElapsed uint64
	if info, active := r.activations[id]; active {
		ticksElapsed = info.ticksElapsed
	}
	r.mu.Unlock()
	if !exists {
		return Status{}, false
	}
	status = f.Status()
	status.TicksElapsed = ticksElapsed
	return status, true
}

// AllStatus returns every registered fault's status, ordered by id.
func (r *Registry) AllStatus() []Status {
	ids := r.RegisteredIDs()
	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.Status(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// RegisteredIDs returns every registered fault id, sorted.
func (r *Registry) RegisteredIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.faults))
	for id := range r.faults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FaultCount returns the number of registered faults.
func (r *Registry) FaultCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.faults)
}

// ActiveCount returns the number of currently active faults.
func (r *Registry) ActiveCount() int {
	return len(r.ActiveIDs())
}

func (r *Registry) tick() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentTick
}

// OnTick is called once per tick by the driver, before per-zone ticks. It
// ticks every active Ambient fault directly (TickScoped faults fire via
// ExecutePreTickFaults instead), advances ticks_elapsed for every active
// fault, and auto-deactivates any whose duration has elapsed.
func (r *Registry) OnTick(tick uint64) {
	r.mu.Lock()
	r.currentTick = tick
	ids := make([]string, 0, len(r.activations))
	for id := range r.activations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	r.mu.Unlock()

	var expired []string
	for _, id := range ids {
		r.mu.Lock()
		f, fOk := r.faults[id]
		info, aOk := r.activations[id]
		r.mu.Unlock()
		if !fOk || !aOk || !f.IsActive() {
			continue
		}

		if f.Mode() == ModeAmbient {
			f.OnTick(tick, nil)
		}

		r.mu.Lock()
		info.ticksElapsed++
		elapsed := info.ticksElapsed
		duration := info.config.DurationTicks
		r.mu.Unlock()

		if duration > 0 && elapsed >= duration {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		_ = r.Deactivate(id, "")
	}
}

// ExecutePreTickFaults is installed as a zone's pre-tick hook. It dispatches
// every active TickScoped fault targeting this zone (target_zone_id == 0
// means every zone). A fault callback may panic; the zone's isolation guard
// recovers it, not this function.
func (r *Registry) ExecutePreTickFaults(z *zone.Zone) {
	for _, id := range r.ActiveIDs() {
		r.mu.Lock()
		f, fOk := r.faults[id]
		info, aOk := r.activations[id]
		r.mu.Unlock()
		if !fOk || !aOk || f.Mode() != ModeTickScoped {
			continue
		}
		if info.config.TargetZoneID != 0 && info.config.TargetZoneID != z.ID {
			continue
		}
		f.OnTick(r.tick(), z)
	}
}
