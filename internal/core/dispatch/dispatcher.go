// Package dispatch implements the delivery choke point. Every real-time
// update the platform sends, whether triggered by an inbound socket event or
// by a business service, goes through Dispatcher.Emit.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/munchmtxi/realtime-gateway/internal/core/catalog"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

// Dispatcher resolves a target to room keys, hands the envelope to the
// transport, and records the outcome. Emission is best-effort: failures are
// logged and surface only in the returned Outcome, never as an error or
// panic to the triggering operation. Safe for concurrent use.
type Dispatcher struct {
	transport ports.Transport
	sinks     []ports.DispatchSink
	logger    *slog.Logger
}

var _ ports.Emitter = (*Dispatcher)(nil)

// New creates a dispatcher. Sinks receive a record of every dispatch; at
// minimum pass a LogSink.
func New(transport ports.Transport, logger *slog.Logger, sinks ...ports.DispatchSink) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		sinks:     sinks,
		logger:    logger.With("component", "dispatcher"),
	}
}

// Emit delivers payload tagged with event to every connection in the
// target's resolved room(s). Sequential calls from one goroutine reach each
// room in call order; no ordering holds across independent callers.
func (d *Dispatcher) Emit(ctx context.Context, event string, payload interface{}, target ports.Target, opts ...ports.EmitOption) (out ports.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := &apperrors.DeliveryFailure{Err: fmt.Errorf("panic during dispatch: %v", r)}
			d.logger.Error("dispatch panicked",
				"event", event,
				"panic", r,
			)
			out = ports.Outcome{Err: err}
			d.record(ctx, event, out)
		}
	}()

	var options ports.EmitOptions
	for _, opt := range opts {
		opt(&options)
	}

	if !catalog.Known(event) {
		out = ports.Outcome{Err: &apperrors.UnknownEventError{Name: event}}
		d.logger.Error("dispatch rejected: event not in catalog", "event", event)
		d.record(ctx, event, out)
		return out
	}

	keys, err := target.Resolve()
	if err != nil {
		out = ports.Outcome{Err: err}
		d.logger.Error("dispatch rejected: unresolvable target",
			"event", event,
			"error", err,
		)
		d.record(ctx, event, out)
		return out
	}

	emittedAt := time.Now().UTC()
	total := 0
	var firstErr error
	for _, key := range keys {
		envelope := domain.Envelope{
			Event:     event,
			Payload:   payload,
			Room:      key.String(),
			Language:  options.LanguageCode,
			EmittedAt: emittedAt,
		}
		recipients, err := d.transport.Broadcast(key, envelope)
		total += recipients
		if err != nil {
			failure := &apperrors.DeliveryFailure{Room: key.String(), Err: err}
			d.logger.Error("broadcast failed",
				"event", event,
				"room", key.String(),
				"error", err,
			)
			if firstErr == nil {
				firstErr = failure
			}
		}
	}

	out = ports.Outcome{
		Delivered:  firstErr == nil,
		Recipients: total,
		Rooms:      keys,
		Err:        firstErr,
	}
	d.record(ctx, event, out)
	return out
}

// record fans the dispatch record out to every sink. Sink failures are
// logged and swallowed; recording must never affect the dispatch result.
func (d *Dispatcher) record(ctx context.Context, event string, out ports.Outcome) {
	rec := domain.DispatchRecord{
		ID:         uuid.New(),
		Event:      event,
		Rooms:      roomStrings(out.Rooms),
		Recipients: out.Recipients,
		Delivered:  out.Delivered,
		EmittedAt:  time.Now().UTC(),
	}
	if out.Err != nil {
		rec.Reason = out.Err.Error()
	}

	for _, sink := range d.sinks {
		if err := sink.Record(ctx, rec); err != nil {
			d.logger.Warn("dispatch sink failed",
				"event", event,
				"error", err,
			)
		}
	}
}

func roomStrings(keys []rooms.Key) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key.String())
	}
	return out
}

// LogSink writes dispatch records to the structured logger. It is the
// default sink and is always present in production wiring.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-backed dispatch sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "dispatch_log")}
}

var _ ports.DispatchSink = (*LogSink)(nil)

// Record logs one dispatch outcome.
func (s *LogSink) Record(ctx context.Context, record domain.DispatchRecord) error {
	attrs := []any{
		"dispatch_id", record.ID.String(),
		"event", record.Event,
		"rooms", record.Rooms,
		"recipients", record.Recipients,
		"delivered", record.Delivered,
	}
	if record.Reason != "" {
		attrs = append(attrs, "reason", record.Reason)
	}

	if record.Delivered {
		s.logger.InfoContext(ctx, "event dispatched", attrs...)
	} else {
		s.logger.WarnContext(ctx, "event dispatch failed", attrs...)
	}
	return nil
}
