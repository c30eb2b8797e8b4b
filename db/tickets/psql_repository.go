package tickets

import (
	"context"
	stdSQL "database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(database *sqlx.DB) *PostgresRepository {
	if database == nil {
		panic("db is nil")
	}
	return &PostgresRepository{db: database}
}

func (r *PostgresRepository) Get(ctx context.Context, ticketID string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `
		SELECT ticket_id, ticket_type_id, event_id, owner_email, state, credential_token
		FROM tickets
		WHERE ticket_id = $1
	`, ticketID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Ticket{}, entity.ErrTicketNotFound
	}

	return ticket, err
}

// ExpireForEndedEvents closes the admission window: active tickets of events
// whose ends_at has passed move to expired, so a gate scan after the event
// reports an expired ticket instead of admitting the holder. Used and voided
// tickets keep their state.
func (r *PostgresRepository) ExpireForEndedEvents(ctx context.Context, now time.Time) ([]string, error) {
	var expired []string
	err := r.db.SelectContext(ctx, &expired, `
		UPDATE tickets SET state = $1
		FROM events
		WHERE tickets.event_id = events.event_id
		  AND tickets.state = $2
		  AND events.ends_at IS NOT NULL
		  AND events.ends_at <= $3
		RETURNING tickets.ticket_id
	`, entity.TicketExpired, entity.TicketActive, now)

	return expired, err
}

func (r *PostgresRepository) FindByEvent(ctx context.Context, eventID string) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	err := r.db.SelectContext(ctx, &tickets, `
		SELECT ticket_id, ticket_type_id, event_id, owner_email, state, credential_token
		FROM tickets
		WHERE event_id = $1
		ORDER BY ticket_id
	`, eventID)

	return tickets, err
}
