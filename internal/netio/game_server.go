package netio

import (
	"bufio"
	"encoding/json"
	"net"

	"github.com/rs/zerolog"

	"github.com/norumander/wow-server-sim/internal/coordinator"
	"github.com/norumander/wow-server-sim/internal/queue"
	"github.com/norumander/wow-server-sim/internal/session"
	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// GameServer accepts connections on the game socket, spawns a Session per
// connection, parses newline-terminated JSON into GameEvents, and routes
// them via the coordinator. Session connect/disconnect only ever pushes a
// notification — zone membership (AssignSession/RemoveSession) is mutated
// exclusively by the simulation thread when it drains those notifications.
type GameServer struct {
	coord        *coordinator.Coordinator
	notify       *queue.NotificationQueue
	defaultZone  uint32
	logger       zerolog.Logger
}

// NewGameServer constructs a GameServer that assigns new sessions into
// defaultZone.
func NewGameServer(coord *coordinator.Coordinator, notify *queue.NotificationQueue, defaultZone uint32, logger zerolog.Logger) *GameServer {
	return &GameServer{coord: coord, notify: notify, defaultZone: defaultZone, logger: logger}
}

// Serve accepts connections on ln until it is closed.
func (s *GameServer) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *GameServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	s.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("game connection accepted")

	sess := session.New()
	sess.Apply(session.EventAuthenticateSuccess)
	sess.Apply(session.EventEnterWorld)

	s.notify.Push(queue.SessionNotification{
		Kind:      queue.NotificationConnected,
		SessionID: sess.ID,
		ZoneID:    s.defaultZone,
	})
	defer func() {
		s.notify.Push(queue.SessionNotification{Kind: queue.NotificationDisconnected, SessionID: sess.ID})
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var w wireEvent
		if err := json.Unmarshal(line, &w); err != nil {
			telemetry.EventRecord("netio", "malformed game event dropped", 0, map[string]any{
				"sessionId": sess.ID,
				"error":     err.Error(),
			})
			continue
		}
		w.SessionID = sess.ID

		event, ok := parseGameEvent(w)
		if !ok {
			telemetry.EventRecord("netio", "unknown game event dropped", 0, map[string]any{
				"sessionId": sess.ID,
				"type":      w.Type,
			})
			continue
		}

		if z, zoneOK := s.coord.GetZone(s.coord.SessionZone(sess.ID)); zoneOK {
			z.PushEvent(event)
		}
	}

	sess.Apply(session.EventDisconnect)
}
