package audit

import (
	"context"
	"log/slog"

	id "cadastro/pkg/domain"
	"cadastro/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only: events go
// to the store synchronously and, when a sink is configured, are queued for
// the Worker to forward.
type Publisher struct {
	store  Store
	outbox chan Event
	logger *slog.Logger
}

type Option func(*Publisher)

// WithOutbox queues a copy of every event on ch for a Worker.
func WithOutbox(ch chan Event) Option {
	return func(p *Publisher) { p.outbox = ch }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event with request metadata and records it. A full outbox
// drops the forwarded copy rather than blocking the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.outbox != nil {
		select {
		case p.outbox <- event:
		default:
			p.logger.WarnContext(ctx, "audit outbox full, dropping forwarded event", "type", string(event.Type))
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}
