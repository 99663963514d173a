package netio

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/norumander/wow-server-sim/internal/queue"
	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// ControlServer accepts connections on the control socket, parses requests,
// and posts a ControlCommand (request + response callback) onto the shared
// control queue for the simulation thread to drain and execute.
type ControlServer struct {
	queue  *queue.ControlQueue
	logger zerolog.Logger
}

// NewControlServer constructs a ControlServer posting onto q.
func NewControlServer(q *queue.ControlQueue, logger zerolog.Logger) *ControlServer {
	return &ControlServer{queue: q, logger: logger}
}

// Serve accepts connections on ln until it is closed.
func (s *ControlServer) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *ControlServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	s.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("control connection accepted")

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var w wireControlRequest
		if err := json.Unmarshal(line, &w); err != nil {
			writeResponse(writer, wireControlResponse{Success: false, Error: "malformed request: " + err.Error()})
			continue
		}

		req := queue.ControlRequest{
			Command:       w.Command,
			FaultID:       w.FaultID,
			Params:        w.Params,
			CorrelationID: uuid.NewString(),
		}
		if w.TargetZoneID != nil {
			req.HasTargetZone = true
			req.TargetZoneID = *w.TargetZoneID
		}
		if w.DurationTicks != nil {
			req.HasDuration = true
			req.DurationTicks = *w.DurationTicks
		}

		var wg sync.WaitGroup
		wg.Add(1)
		s.queue.Push(queue.ControlCommand{
			Request: req,
			OnComplete: func(resp queue.ControlResponse) {
				defer wg.Done()
				writeResponse(writer, wireControlResponse{
					Success:       resp.Success,
					Error:         resp.Error,
					Fields:        resp.Fields,
					CorrelationID: resp.CorrelationID,
				})
			},
		})
		wg.Wait()
	}
}

func writeResponse(writer *bufio.Writer, resp wireControlResponse) {
	encoded, err := json.Marshal(resp.toMap())
	if err != nil {
		telemetry.Error("netio", "failed to encode control response", 0, map[string]any{"error": err.Error()})
		return
	}
	writer.Write(encoded)
	writer.WriteByte('\n')
	writer.Flush()
}
