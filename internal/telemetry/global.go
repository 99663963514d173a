package telemetry

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrAlreadyInitialized is returned by Initialize when a global sink is
// already active. The telemetry sink is process-global, so calling
// Initialize twice without an intervening Shutdown is a programmer error,
// not a silent no-op.
var ErrAlreadyInitialized = errors.New("telemetry: already initialized")

// ErrNotInitialized is returned by Shutdown when no global sink is active.
var ErrNotInitialized = errors.New("telemetry: not initialized")

var (
	globalMu     sync.Mutex
	globalRouter *Router
)

// Initialize installs the process-global telemetry router. It fails if a
// router is already installed; call Shutdown first to reset.
func Initialize(cfg Config, fallback zerolog.Logger, sinks []NamedSink) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalRouter != nil {
		return ErrAlreadyInitialized
	}
	globalRouter = NewRouter(cfg, fallback, sinks)
	return nil
}

// Shutdown flushes and tears down the global router, permitting a later
// Initialize call.
func Shutdown(ctx context.Context) error {
	globalMu.Lock()
	router := globalRouter
	globalRouter = nil
	globalMu.Unlock()
	if router == nil {
		return ErrNotInitialized
	}
	return router.Close(ctx)
}

// Initialized reports whether a global router is currently installed.
func Initialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalRouter != nil
}

func current() *Router {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalRouter
}

// Metric publishes a metric record via the global router. No-op if telemetry
// has not been initialized.
func Metric(component, message string, tick uint64, data map[string]any) {
	if r := current(); r != nil {
		r.Publish(metricRecord(component, message, tick, data))
	}
}

// EventRecord publishes an event-kind record via the global router.
func EventRecord(component, message string, tick uint64, data map[string]any) {
	if r := current(); r != nil {
		r.Publish(eventRecord(component, message, tick, data))
	}
}

// Health publishes a health record via the global router.
func Health(component, message string, tick uint64, data map[string]any) {
	if r := current(); r != nil {
		r.Publish(healthRecord(component, message, tick, data))
	}
}

// Error publishes an error record via the global router.
func Error(component, message string, tick uint64, data map[string]any) {
	if r := current(); r != nil {
		r.Publish(errorRecord(component, message, tick, data))
	}
}
