// Package control implements the five-verb operator command dispatcher
// that runs against the fault registry on the simulation thread.
package control

import (
	"fmt"

	"github.com/norumander/wow-server-sim/internal/fault"
	"github.com/norumander/wow-server-sim/internal/queue"
)

// Dispatch executes one control request against registry and returns the
// structured response. Called on the simulation thread after commands are
// drained at the top of a tick.
func Dispatch(registry *fault.Registry, req queue.ControlRequest) queue.ControlResponse {
	var resp queue.ControlResponse
	switch req.Command {
	case "activate":
		resp = dispatchActivate(registry, req)
	case "deactivate":
		resp = dispatchDeactivate(registry, req)
	case "deactivate_all":
		registry.DeactivateAll(req.CorrelationID)
		resp = queue.ControlResponse{Success: true, Fields: map[string]any{"command": req.Command}}
	case "status":
		resp = dispatchStatus(registry, req)
	case "list":
		resp = dispatchList(registry, req)
	default:
		resp = errorResponse(fmt.Sprintf("unrecognized command %q", req.Command))
	}
	resp.CorrelationID = req.CorrelationID
	return resp
}

func dispatchActivate(registry *fault.Registry, req queue.ControlRequest) queue.ControlResponse {
	if req.FaultID == "" {
		return errorResponse("activate requires fault_id")
	}
	cfg := fault.Config{Params: req.Params}
	if req.HasTargetZone {
		cfg.TargetZoneID = req.TargetZoneID
	}
	if req.HasDuration {
		cfg.DurationTicks = req.DurationTicks
	}
	if err := registry.Activate(req.FaultID, cfg, req.CorrelationID); err != nil {
		return errorResponse(err.Error())
	}
	return queue.ControlResponse{Success: true, Fields: map[string]any{"command": req.Command, "fault_id": req.FaultID}}
}

func dispatchDeactivate(registry *fault.Registry, req queue.ControlRequest) queue.ControlResponse {
	if req.FaultID == "" {
		return errorResponse("deactivate requires fault_id")
	}
	if err := registry.Deactivate(req.FaultID, req.CorrelationID); err != nil {
		return errorResponse(err.Error())
	}
	return queue.ControlResponse{Success: true, Fields: map[string]any{"command": req.Command, "fault_id": req.FaultID}}
}

func dispatchStatus(registry *fault.Registry, req queue.ControlRequest) queue.ControlResponse {
	if req.FaultID == "" {
		return errorResponse("status requires fault_id")
	}
	status, ok := registry.Status(req.FaultID)
	if !ok {
		return errorResponse(fmt.Sprintf("fault %q not registered", req.FaultID))
	}
	return queue.ControlResponse{Success: true, Fields: map[string]any{
		"command":  req.Command,
		"fault_id": req.FaultID,
		"status":   status,
	}}
}

func dispatchList(registry *fault.Registry, req queue.ControlRequest) queue.ControlResponse {
	return queue.ControlResponse{Success: true, Fields: map[string]any{
		"command": req.Command,
		"faults":  registry.AllStatus(),
	}}
}

func errorResponse(msg string) queue.ControlResponse {
	return queue.ControlResponse{Success: false, Error: msg}
}
