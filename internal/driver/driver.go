// Package driver implements the fixed-rate simulation tick loop: a list of
// registered callbacks invoked at a configured frequency, with overrun
// reporting and no debt accumulation.
package driver

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// Callback is a registered tick handler. It receives a zero-indexed
// sequential tick number.
type Callback func(tick uint64)

// Config tunes the driver's tick frequency.
type Config struct {
	TickRateHz int
}

// DefaultConfig returns the default tick rate of 20 Hz.
func DefaultConfig() Config {
	return Config{TickRateHz: 20}
}

// Driver invokes registered callbacks at a fixed rate on the calling
// goroutine's Run loop. Register must be called before Start; Stop is safe
// to call from any goroutine. Stop only sets the stop flag and returns at
// once; it does not wait for the in-flight tick. Wait blocks until Run has
// returned.
type Driver struct {
	interval time.Duration

	mu        sync.Mutex
	callbacks []Callback
	started   bool

	stopped atomic.Bool
	done    chan struct{}

	totalTicks atomic.Uint64
}

// New constructs a Driver from cfg. A non-positive TickRateHz falls back to
// the default 20 Hz.
func New(cfg Config) *Driver {
	rate := cfg.TickRateHz
	if rate <= 0 {
		rate = 20
	}
	return &Driver{
		interval: time.Second / time.Duration(rate),
		done:     make(chan struct{}),
	}
}

// Register adds a callback to be invoked, in registration order, on every
// tick. Must be called before Start.
func (d *Driver) Register(cb Callback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = append(d.callbacks, cb)
}

// Start marks the driver runnable. Idempotent.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
}

// Stop flips a shared flag observed at the top of the next loop iteration.
// Idempotent; safe from any goroutine. The in-flight tick, if any, always
// runs to completion before Run returns.
func (d *Driver) Stop() {
	d.stopped.Store(true)
}

// TotalTicks reports how many ticks have completed so far.
func (d *Driver) TotalTicks() uint64 {
	return d.totalTicks.Load()
}

// Run blocks the calling goroutine, driving the fixed-rate tick loop until
// Stop is called. At each iteration: record t0, invoke every registered
// callback in order with the current tick counter, measure elapsed time,
// and sleep for interval-elapsed if elapsed < interval. An overrun (elapsed
// >= interval) is recorded and reported but never causes back-to-back
// ticks — the next tick still starts at least one interval later.
func (d *Driver) Run() {
	d.mu.Lock()
	started := d.started
	callbacks := make([]Callback, len(d.callbacks))
	copy(callbacks, d.callbacks)
	d.mu.Unlock()
	if !started {
		return
	}

	defer close(d.done)

	var tick uint64
	for {
		if d.stopped.Load() {
			telemetry.EventRecord("driver", "stopped", tick, map[string]any{
				"totalTicks": d.totalTicks.Load(),
			})
			return
		}

		t0 := time.Now()
		for _, cb := range callbacks {
			cb(tick)
		}
		elapsed := time.Since(t0)

		overrun := elapsed >= d.interval
		telemetry.Metric("driver", "tick completed", tick, map[string]any{
			"durationNanos": elapsed.Nanoseconds(),
			"overrun":       overrun,
		})

		d.totalTicks.Add(1)
		tick++

		if !overrun {
			time.Sleep(d.interval - elapsed)
		}
	}
}

// Wait blocks until Run has returned after a Stop call, for tests and
// orderly shutdown sequencing.
func (d *Driver) Wait() {
	<-d.done
}
