package audit

import (
	"context"
	"log/slog"
)

// Worker drains queued events into a slow sink (Kafka) off the request path.
type Worker struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
}

// NewWorker creates a worker with a bounded queue.
func NewWorker(sink Sink, queueSize int, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: make(chan Event, queueSize), logger: logger}
}

// Emit enqueues without blocking; a full queue drops the event.
func (w *Worker) Emit(ctx context.Context, event Event) error {
	select {
	case w.inbox <- event:
	default:
		w.logger.WarnContext(ctx, "audit queue full, dropping event",
			"action", string(event.Action),
			"request_id", event.RequestID,
		)
	}
	return nil
}

// Run delivers events until ctx is done, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.sink.Emit(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to publish audit event",
			"error", err,
			"action", string(event.Action),
			"request_id", event.RequestID,
		)
	}
}
