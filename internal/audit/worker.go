package audit

import (
	"context"
	"log/slog"
)

// Worker forwards queued events to a sink. Sink failures are logged and the
// event is dropped; the store already holds it.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Write(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to forward audit event",
					"error", err,
					"type", string(event.Type),
					"user_id", event.UserID.String(),
				)
			}
		}
	}
}
