// Package session implements the connection-lifecycle state machine: six
// states, ten valid transitions, and a process-wide monotonic id counter.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// State is one of the six lifecycle states a session can occupy.
type State string

const (
	StateConnecting    State = "connecting"
	StateAuthenticating State = "authenticating"
	StateInWorld        State = "in_world"
	StateTransferring   State = "transferring"
	StateDisconnecting  State = "disconnecting"
	StateDestroyed      State = "destroyed"
)

// Event is a lifecycle transition trigger.
type Event string

const (
	EventAuthenticateSuccess Event = "authenticate_success"
	EventEnterWorld          Event = "enter_world"
	EventDisconnect          Event = "disconnect"
	EventBeginTransfer       Event = "begin_transfer"
	EventTransferComplete    Event = "transfer_complete"
	EventReconnect           Event = "reconnect"
	EventTimeout             Event = "timeout"
)

type transitionKey struct {
	from  State
	event Event
}

// transitions is the closed table of valid (from, event) -> to moves. Any
// pair not present here is invalid.
var transitions = map[transitionKey]State{
	{StateConnecting, EventAuthenticateSuccess}: StateAuthenticating,
	{StateConnecting, EventDisconnect}:          StateDestroyed,
	{StateAuthenticating, EventEnterWorld}:      StateInWorld,
	{StateAuthenticating, EventDisconnect}:      StateDisconnecting,
	{StateInWorld, EventDisconnect}:             StateDisconnecting,
	{StateInWorld, EventBeginTransfer}:          StateTransferring,
	{StateTransferring, EventTransferComplete}:  StateInWorld,
	{StateTransferring, EventDisconnect}:        StateDisconnecting,
	{StateDisconnecting, EventReconnect}:        StateAuthenticating,
	{StateDisconnecting, EventTimeout}:          StateDestroyed,
}

var nextID atomic.Uint64

// NextID returns the next process-wide monotonically increasing session id,
// starting at 1.
func NextID() uint64 {
	return nextID.Add(1)
}

// Session tracks one connection's lifecycle state. Safe for concurrent use.
type Session struct {
	ID uint64

	mu    sync.Mutex
	state State
}

// New constructs a session in the initial Connecting state with a freshly
// minted id.
func New() *Session {
	return &Session{ID: NextID(), state: StateConnecting}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply attempts to process event against the session's current state. A
// valid transition moves state and emits a transition event; an invalid one
// leaves state unchanged and emits an error record. ok reports whether the
// transition was valid.
func (s *Session) Apply(event Event) (ok bool) {
	s.mu.Lock()
	current := s.state
	next, valid := transitions[transitionKey{current, event}]
	if valid {
		s.state = next
	}
	s.mu.Unlock()

	if valid {
		telemetry.EventRecord("session", "state transition", 0, map[string]any{
			"sessionId": s.ID,
			"fromState": string(current),
			"toState":   string(next),
			"event":     string(event),
		})
		return true
	}

	telemetry.Error("session", "invalid state transition", 0, map[string]any{
		"sessionId":    s.ID,
		"currentState": string(current),
		"event":        string(event),
	})
	return false
}

// IsTerminal reports whether the session has reached the Destroyed state.
func (s *Session) IsTerminal() bool {
	return s.State() == StateDestroyed
}
