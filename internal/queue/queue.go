// Package queue implements the three drain-style queues that are the only
// synchronization between the network thread and the simulation thread:
// many producers push, exactly one consumer drains the entire backlog
// atomically in FIFO order. All three share that contract but are kept as
// distinct types — EventQueue carries game events, NotificationQueue carries
// plain lifecycle values, and ControlQueue carries a request plus a
// response callback — rather than one generic queue instantiated three
// times.
package queue

import (
	"sync"

	"github.com/norumander/wow-server-sim/internal/model"
)

// EventQueue buffers GameEvents for a single zone.
type EventQueue struct {
	mu     sync.Mutex
	events []model.GameEvent
}

// Push stages an event. Safe for concurrent callers.
func (q *EventQueue) Push(event model.GameEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
}

// Drain atomically returns every staged event in FIFO order and empties the
// queue. Must only be called by the single consumer.
func (q *EventQueue) Drain() []model.GameEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	drained := q.events
	q.events = nil
	return drained
}

// Size reports the number of currently staged events. Consistent with a
// recent state only — no stronger guarantee is made under concurrent use.
func (q *EventQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Empty reports whether the queue currently holds no events.
func (q *EventQueue) Empty() bool {
	return q.Size() == 0
}

// NotificationKind distinguishes session lifecycle notifications.
type NotificationKind string

const (
	NotificationConnected    NotificationKind = "connected"
	NotificationDisconnected NotificationKind = "disconnected"
)

// SessionNotification is a plain-value lifecycle notification produced by
// the network thread and consumed once per tick by the simulation thread.
// The network thread only ever pushes one of these; it never touches zone
// membership itself — ZoneID carries the target zone a Connected
// notification should be assigned into, and is unused for Disconnected.
type SessionNotification struct {
	Kind      NotificationKind
	SessionID uint64
	ZoneID    uint32
}

// NotificationQueue buffers SessionNotifications.
type NotificationQueue struct {
	mu            sync.Mutex
	notifications []SessionNotification
}

// Push stages a notification.
func (q *NotificationQueue) Push(n SessionNotification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notifications = append(q.notifications, n)
}

// Drain atomically returns every staged notification in FIFO order and
// empties the queue.
func (q *NotificationQueue) Drain() []SessionNotification {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.notifications) == 0 {
		return nil
	}
	drained := q.notifications
	q.notifications = nil
	return drained
}

// Size reports the number of currently staged notifications.
func (q *NotificationQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notifications)
}

// ControlCommand is an operator request plus the callback the network
// thread should invoke with the response once the simulation thread has
// executed it.
type ControlCommand struct {
	Request    ControlRequest
	OnComplete func(ControlResponse)
}

// ControlRequest is the parsed shape of an operator control-socket request;
// see internal/control for verb semantics.
type ControlRequest struct {
	Command        string
	FaultID        string
	Params         map[string]any
	TargetZoneID   uint32
	DurationTicks  uint64
	HasTargetZone  bool
	HasDuration    bool

	// CorrelationID identifies this request across the control socket,
	// dispatch, and telemetry. Assigned by the network layer before the
	// request is queued.
	CorrelationID string
}

// ControlResponse is the structured reply handed back to ControlCommand's
// OnComplete callback.
type ControlResponse struct {
	Success       bool
	Error         string
	Fields        map[string]any
	CorrelationID string
}

// ControlQueue buffers ControlCommands awaiting execution on the simulation
// thread.
type ControlQueue struct {
	mu       sync.Mutex
	commands []ControlCommand
}

// Push stages a control command.
func (q *ControlQueue) Push(cmd ControlCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commands = append(q.commands, cmd)
}

// Drain atomically returns every staged command in FIFO order and empties
// the queue.
func (q *ControlQueue) Drain() []ControlCommand {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.commands) == 0 {
		return nil
	}
	drained := q.commands
	q.commands = nil
	return drained
}

// Size reports the number of currently staged commands.
func (q *ControlQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
