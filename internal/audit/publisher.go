package audit

import (
	"context"
	"log/slog"

	"galang/pkg/requestcontext"
)

// Publisher is the port services emit audit events through.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// Emit stamps the event with request-scoped metadata and appends it. Inside a
// ledger transaction the append shares the transaction; elsewhere a failed
// append is logged but never fails the caller's mutation.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID.IsNil() {
		event.ActorID = requestcontext.UserID(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit append failed",
				"action", event.Action,
				"error", err.Error(),
			)
		}
		return err
	}
	return nil
}
