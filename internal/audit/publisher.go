package audit

import (
	"context"

	"github.com/google/uuid"
)

// Store is the append-only sink behind the Publisher. Implementations exist
// for in-memory (tests, single-node), a Postgres outbox, and Kafka.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// store layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return p.store.Append(ctx, event)
}
