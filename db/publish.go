package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub/bus"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/pubsub/outbox"
)

// PublishInTx stores a domain event in the outbox within the given
// transaction. The forwarder delivers it to the broker after commit.
func PublishInTx(ctx context.Context, tx *sqlx.Tx, event any) error {
	outboxPublisher, err := outbox.NewPublisherForDb(tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	if err := eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}
