// Package audit records who changed what. Publishing is best effort: sinks
// may fail without failing the operation that emitted the event.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hackportal/pkg/platform/middleware/metadata"
)

// Sink receives audit events.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, event Event) error {
	attrs := []any{
		"action", string(event.Action),
		"actor_id", event.ActorID.String(),
		"request_id", event.RequestID,
	}
	if event.ClientIP != "" {
		attrs = append(attrs, "client_ip", event.ClientIP)
	}
	if !event.UserID.IsNil() {
		attrs = append(attrs, "user_id", event.UserID.String())
	}
	if !event.ProjectID.IsNil() {
		attrs = append(attrs, "project_id", event.ProjectID.String())
	}
	if event.Email != "" {
		attrs = append(attrs, "email", event.Email)
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

// Fanout delivers every event to each sink and joins their errors.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publisher stamps events with the time and client address, then hands them
// to a sink.
type Publisher struct {
	sink  Sink
	clock func() time.Time
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink, clock: time.Now}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	if event.ClientIP == "" {
		event.ClientIP = metadata.GetClientIP(ctx)
	}
	return p.sink.Emit(ctx, event)
}
