package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// JSONFile emits newline-delimited Record JSON, one record per line.
type JSONFile struct {
	mu        sync.Mutex
	writer    *bufio.Writer
	closer    io.Closer
	autoFlush bool
}

// NewJSONFile constructs a JSON sink writing to w. If flushInterval is zero,
// every write is flushed immediately; otherwise a background goroutine
// flushes on that cadence.
func NewJSONFile(w io.Writer, flushInterval time.Duration) *JSONFile {
	closer, _ := w.(io.Closer)
	sink := &JSONFile{
		writer:    bufio.NewWriter(w),
		closer:    closer,
		autoFlush: flushInterval <= 0,
	}
	if flushInterval > 0 {
		go sink.periodicFlush(flushInterval)
	}
	return sink
}

// Write satisfies telemetry.Sink.
func (s *JSONFile) Write(record telemetry.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return err
	}
	if s.autoFlush {
		return s.writer.Flush()
	}
	return nil
}

// Close flushes buffered output and closes the underlying writer if it
// supports io.Closer.
func (s *JSONFile) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *JSONFile) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		s.writer.Flush()
		s.mu.Unlock()
	}
}
