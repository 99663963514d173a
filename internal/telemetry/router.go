package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config tunes the router's queueing and drop-warning behavior.
type Config struct {
	BufferSize       int
	DropWarnInterval time.Duration
}

// DefaultConfig returns sane defaults for Config.
func DefaultConfig() Config {
	return Config{BufferSize: 512, DropWarnInterval: 5 * time.Second}
}

// Router fans a single stream of telemetry records out to every configured
// sink, each on its own worker goroutine so a slow or failing sink cannot
// stall another.
type Router struct {
	cfg      Config
	queue    chan Record
	sinks    []*sinkWorker
	fallback zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
	wg       sync.WaitGroup

	recordsTotal atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

// RouterStats exposes coarse counters for diagnostics.
type RouterStats struct {
	RecordsTotal uint64
	DroppedTotal uint64
}

// NewRouter constructs and starts a Router over the given sinks.
func NewRouter(cfg Config, fallback zerolog.Logger, namedSinks []NamedSink) *Router {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:      cfg,
		queue:    make(chan Record, bufferSize),
		fallback: fallback,
		ctx:      ctx,
		cancel:   cancel,
	}

	sinkBuffer := bufferSize
	if sinkBuffer > 1024 {
		sinkBuffer = 1024
	}
	if sinkBuffer < 32 {
		sinkBuffer = 32
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, newSinkWorker(named.Name, named.Sink, sinkBuffer, fallback))
	}

	r.start()
	return r
}

func (r *Router) start() {
	r.wg.Add(1)
	go func() {
		defer func() {
			for _, worker := range r.sinks {
				close(worker.records)
			}
			r.wg.Done()
		}()
		for {
			select {
			case <-r.ctx.Done():
				r.drain()
				return
			case record := <-r.queue:
				r.forward(record)
			}
		}
	}()

	for _, worker := range r.sinks {
		r.wg.Add(1)
		go func(w *sinkWorker) {
			defer r.wg.Done()
			w.run()
		}(worker)
	}
}

func (r *Router) drain() {
	for {
		select {
		case record := <-r.queue:
			r.forward(record)
		default:
			return
		}
	}
}

func (r *Router) forward(record Record) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	r.recordsTotal.Add(1)
	for _, worker := range r.sinks {
		worker.enqueue(record)
	}
}

// Publish enqueues a record for dispatch to every sink. Never blocks: if the
// router's internal queue is saturated the record is dropped and a
// rate-limited warning is logged to the fallback logger.
func (r *Router) Publish(record Record) {
	if record.Type == "" {
		return
	}
	if r.closed.Load() {
		return
	}
	select {
	case r.queue <- record:
	default:
		r.handleDrop(record)
	}
}

func (r *Router) handleDrop(record Record) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.lastDropLog.Load()
	if next == 0 || now >= next {
		if r.lastDropLog.CompareAndSwap(next, now+interval.Nanoseconds()) {
			r.fallback.Warn().Str("type", string(record.Type)).Uint64("tick", record.Tick).Msg("dropping telemetry record: queue full")
		}
	}
}

// Close stops accepting new records, flushes what's queued, and closes every
// sink. Safe to call once; a second call blocks until ctx is done and then
// returns ctx.Err() (it does not re-close).
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		<-ctx.Done()
		return ctx.Err()
	}
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, worker := range r.sinks {
		if err := worker.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats reports coarse router counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{RecordsTotal: r.recordsTotal.Load(), DroppedTotal: r.droppedTotal.Load()}
}

type sinkWorker struct {
	name      string
	sink      Sink
	records   chan Record
	fallback  zerolog.Logger
	failures  int
	nextRetry time.Time
}

func newSinkWorker(name string, sink Sink, buffer int, fallback zerolog.Logger) *sinkWorker {
	if buffer <= 0 {
		buffer = 32
	}
	return &sinkWorker{name: name, sink: sink, records: make(chan Record, buffer), fallback: fallback}
}

func (w *sinkWorker) enqueue(record Record) {
	select {
	case w.records <- record:
	default:
		w.fallback.Warn().Str("sink", w.name).Str("type", string(record.Type)).Msg("sink backlog full, dropping record")
	}
}

func (w *sinkWorker) run() {
	for record := range w.records {
		w.waitUntilReady()
		if err := w.sink.Write(record); err != nil {
			w.fail(err)
		} else {
			w.failures = 0
			w.nextRetry = time.Time{}
		}
	}
}

func (w *sinkWorker) waitUntilReady() {
	if w.failures == 0 {
		return
	}
	for {
		now := time.Now()
		if w.nextRetry.IsZero() || !now.Before(w.nextRetry) {
			return
		}
		time.Sleep(time.Until(w.nextRetry))
	}
}

func (w *sinkWorker) fail(err error) {
	if err == nil {
		return
	}
	w.failures++
	backoff := w.failures
	if backoff > 5 {
		backoff = 5
	}
	delay := time.Duration(1<<uint(backoff)) * time.Second
	w.nextRetry = time.Now().Add(delay)
	w.fallback.Error().Str("sink", w.name).Err(err).Dur("retryIn", delay).Msg("telemetry sink write failed")
}
