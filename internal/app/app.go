// Package app wires the configuration, telemetry sink, zone coordinator,
// fault registry, tick driver, and network listeners into a running server.
package app

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"

	"github.com/norumander/wow-server-sim/internal/config"
	"github.com/norumander/wow-server-sim/internal/control"
	"github.com/norumander/wow-server-sim/internal/coordinator"
	"github.com/norumander/wow-server-sim/internal/driver"
	"github.com/norumander/wow-server-sim/internal/fault"
	"github.com/norumander/wow-server-sim/internal/model"
	"github.com/norumander/wow-server-sim/internal/netio"
	"github.com/norumander/wow-server-sim/internal/queue"
	"github.com/norumander/wow-server-sim/internal/telemetry"
	"github.com/norumander/wow-server-sim/internal/telemetry/sinks"
)

// Run loads configuration, initializes the global telemetry sink, wires the
// coordinator/registry/driver, starts the game and control listeners, and
// blocks until ctx is cancelled.
func Run(ctx context.Context, configDir string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("app: failed to load config: %w", err)
	}

	consoleLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	jsonFile, err := os.OpenFile(cfg.TelemetryPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("app: failed to open telemetry file %q: %w", cfg.TelemetryPath, err)
	}
	jsonSink := sinks.NewJSONFile(jsonFile, 0)

	telemetryCfg := telemetry.DefaultConfig()
	if err := telemetry.Initialize(telemetryCfg, consoleLogger, []telemetry.NamedSink{
		{Name: "file", Sink: jsonSink},
	}); err != nil {
		return fmt.Errorf("app: failed to initialize telemetry: %w", err)
	}
	defer telemetry.Shutdown(ctx)

	coord := coordinator.New()
	for _, seed := range cfg.Zones {
		z, err := coord.CreateZone(seed.ID)
		if err != nil {
			return fmt.Errorf("app: failed to create zone %d: %w", seed.ID, err)
		}
		for i := 0; i < seed.NPCPopulation; i++ {
			if err := z.AddEntity(model.NewNPC(seed.NPCBaseID + uint64(i))); err != nil {
				return fmt.Errorf("app: failed to seed NPC in zone %d: %w", seed.ID, err)
			}
		}
	}

	registry := fault.NewRegistry()
	for _, f := range []fault.Fault{
		fault.NewLatencySpike(),
		fault.NewSessionCrash(),
		fault.NewEventQueueFlood(),
		fault.NewMemoryPressure(),
		fault.NewCascadingZoneFailure(),
		fault.NewSlowLeak(),
		fault.NewSplitBrain(),
		fault.NewThunderingHerd(),
	} {
		if err := registry.Register(f); err != nil {
			return fmt.Errorf("app: failed to register fault %q: %w", f.ID(), err)
		}
	}

	for _, zid := range coord.ZoneIDs() {
		z, _ := coord.GetZone(zid)
		z.SetPreTickHook(registry.ExecutePreTickFaults)
	}

	notifications := &queue.NotificationQueue{}
	controlQueue := &queue.ControlQueue{}

	tickDriver := driver.New(driver.Config{TickRateHz: cfg.TickRateHz})
	tickDriver.Register(func(tick uint64) {
		for _, n := range notifications.Drain() {
			switch n.Kind {
			case queue.NotificationConnected:
				if err := coord.AssignSession(n.SessionID, n.ZoneID); err != nil {
					telemetry.Error("app", "failed to assign session to zone", tick, map[string]any{
						"sessionId": n.SessionID,
						"zoneId":    n.ZoneID,
						"error":     err.Error(),
					})
				}
			case queue.NotificationDisconnected:
				coord.RemoveSession(n.SessionID)
			}
		}
		for _, cmd := range controlQueue.Drain() {
			resp := control.Dispatch(registry, cmd.Request)
			if cmd.OnComplete != nil {
				cmd.OnComplete(resp)
			}
		}
		registry.OnTick(tick)
		coord.TickAll(tick)
	})

	gameListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GamePort))
	if err != nil {
		return fmt.Errorf("app: failed to bind game port %d: %w", cfg.GamePort, err)
	}
	controlListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.ControlPort))
	if err != nil {
		return fmt.Errorf("app: failed to bind control port %d: %w", cfg.ControlPort, err)
	}

	tickDriver.Start()
	go tickDriver.Run()
	defer tickDriver.Stop()

	defaultZone := uint32(0)
	if len(cfg.Zones) > 0 {
		defaultZone = cfg.Zones[0].ID
	}
	gameServer := netio.NewGameServer(coord, notifications, defaultZone, consoleLogger)
	controlServer := netio.NewControlServer(controlQueue, consoleLogger)

	go func() { _ = gameServer.Serve(gameListener) }()
	go func() { _ = controlServer.Serve(controlListener) }()

	consoleLogger.Info().
		Int("gamePort", cfg.GamePort).
		Int("controlPort", cfg.ControlPort).
		Int("tickRateHz", cfg.TickRateHz).
		Msg("server listening")

	<-ctx.Done()

	_ = gameListener.Close()
	_ = controlListener.Close()
	tickDriver.Stop()
	tickDriver.Wait()
	return nil
}
