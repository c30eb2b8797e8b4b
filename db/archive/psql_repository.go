package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// StoredEvent is one archived domain event, kept verbatim for auditing and
// dashboard feeds.
type StoredEvent struct {
	ID          string    `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	Name        string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(database *sqlx.DB) *PostgresRepository {
	if database == nil {
		panic("db is nil")
	}
	return &PostgresRepository{db: database}
}

func (r *PostgresRepository) Store(ctx context.Context, event StoredEvent) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO event_archive (event_id, published_at, event_name, event_payload)
		VALUES (:event_id, :published_at, :event_name, :event_payload)
	`, event)

	var postgresError *pq.Error
	if errors.As(err, &postgresError) && postgresError.Code.Name() == "unique_violation" {
		// handling re-delivery
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not archive event %s: %w", event.ID, err)
	}

	return nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]StoredEvent, error) {
	var events []StoredEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload
		FROM event_archive
		ORDER BY published_at ASC
	`)

	return events, err
}
