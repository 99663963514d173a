package sinks

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/norumander/wow-server-sim/internal/telemetry"
)

// Console writes human-readable lines to an io.Writer via zerolog's console
// writer, for local operator visibility alongside the structured JSON sink.
type Console struct {
	logger zerolog.Logger
}

// NewConsole builds a Console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{logger: zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: false}).With().Timestamp().Logger()}
}

// Write satisfies telemetry.Sink.
func (c *Console) Write(record telemetry.Record) error {
	evt := c.logger.Info()
	switch record.Type {
	case telemetry.KindError:
		evt = c.logger.Error()
	case telemetry.KindHealth:
		evt = c.logger.Warn()
	}
	evt = evt.Str("component", record.Component).Uint64("tick", record.Tick)
	for k, v := range record.Data {
		evt = evt.Interface(k, v)
	}
	evt.Msg(record.Message)
	return nil
}

// Close satisfies telemetry.Sink; the console writer has nothing to flush.
func (c *Console) Close(context.Context) error {
	return nil
}
