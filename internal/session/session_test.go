package session_test

import (
	"testing"

	"github.com/norumander/wow-server-sim/internal/session"
)

func TestNewAssignsIncreasingIDs(t *testing.T) {
	a := session.New()
	b := session.New()
	if b.ID <= a.ID {
		t.Fatalf("expected increasing ids, got a=%d b=%d", a.ID, b.ID)
	}
}

func TestFullLifecycleHappyPath(t *testing.T) {
	s := session.New()

	if !s.Apply(session.EventAuthenticateSuccess) || s.State() != session.StateAuthenticating {
		t.Fatalf("expected Authenticating, got %s", s.State())
	}
	if !s.Apply(session.EventEnterWorld) || s.State() != session.StateInWorld {
		t.Fatalf("expected InWorld, got %s", s.State())
	}
	if !s.Apply(session.EventBeginTransfer) || s.State() != session.StateTransferring {
		t.Fatalf("expected Transferring, got %s", s.State())
	}
	if !s.Apply(session.EventTransferComplete) || s.State() != session.StateInWorld {
		t.Fatalf("expected back to InWorld, got %s", s.State())
	}
	if !s.Apply(session.EventDisconnect) || s.State() != session.StateDisconnecting {
		t.Fatalf("expected Disconnecting, got %s", s.State())
	}
	if !s.Apply(session.EventReconnect) || s.State() != session.StateAuthenticating {
		t.Fatalf("expected Authenticating after reconnect, got %s", s.State())
	}
	if !s.Apply(session.EventEnterWorld) || s.State() != session.StateInWorld {
		t.Fatalf("expected InWorld again, got %s", s.State())
	}
	if !s.Apply(session.EventDisconnect) || s.State() != session.StateDisconnecting {
		t.Fatalf("expected Disconnecting, got %s", s.State())
	}
	if !s.Apply(session.EventTimeout) || s.State() != session.StateDestroyed {
		t.Fatalf("expected Destroyed, got %s", s.State())
	}
	if !s.IsTerminal() {
		t.Fatalf("expected terminal state")
	}
}

func TestInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	s := session.New()
	if s.Apply(session.EventEnterWorld) {
		t.Fatalf("expected EnterWorld from Connecting to be invalid")
	}
	if s.State() != session.StateConnecting {
		t.Fatalf("expected state unchanged after invalid transition, got %s", s.State())
	}
}

func TestDestroyedIsTerminal(t *testing.T) {
	s := session.New()
	s.Apply(session.EventDisconnect)
	if s.State() != session.StateDestroyed {
		t.Fatalf("expected Destroyed, got %s", s.State())
	}
	if s.Apply(session.EventReconnect) {
		t.Fatalf("expected no transitions out of Destroyed")
	}
}
