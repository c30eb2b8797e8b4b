package inventory

import (
	"context"
	stdSQL "database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

// PostgresRepository owns the ticket-type counters and reservation rows.
// Every mutation locks the ticket_types row, so operations on the same type
// are serialized while different types never block each other.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(database *sqlx.DB) *PostgresRepository {
	if database == nil {
		panic("db is nil")
	}
	return &PostgresRepository{db: database}
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event entity.Event) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events (event_id, name, starts_at, ends_at, transaction_limit)
		VALUES (:event_id, :name, :starts_at, :ends_at, :transaction_limit)
		ON CONFLICT DO NOTHING
	`, event)
	return err
}

func (r *PostgresRepository) GetEvent(ctx context.Context, eventID string) (entity.Event, error) {
	var event entity.Event
	err := r.db.GetContext(ctx, &event, `
		SELECT event_id, name, starts_at, ends_at, transaction_limit
		FROM events
		WHERE event_id = $1
	`, eventID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Event{}, entity.ErrEventNotFound
	}

	return event, err
}

func (r *PostgresRepository) CreateTicketType(ctx context.Context, tt entity.TicketType) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO ticket_types
			(ticket_type_id, event_id, name, capacity, reserved, sold, per_transaction_limit, price_cents, price_currency)
		VALUES
			(:ticket_type_id, :event_id, :name, :capacity, :reserved, :sold, :per_transaction_limit, :price_cents, :price_currency)
		ON CONFLICT DO NOTHING
	`, tt)
	return err
}

func (r *PostgresRepository) GetTicketType(ctx context.Context, ticketTypeID string) (entity.TicketType, error) {
	var tt entity.TicketType
	err := r.db.GetContext(ctx, &tt, `
		SELECT ticket_type_id, event_id, name, capacity, reserved, sold, per_transaction_limit, price_cents, price_currency
		FROM ticket_types
		WHERE ticket_type_id = $1
	`, ticketTypeID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.TicketType{}, entity.ErrTicketTypeNotFound
	}

	return tt, err
}

func (r *PostgresRepository) GetReservation(ctx context.Context, reservationID string) (entity.Reservation, error) {
	var res entity.Reservation
	err := r.db.GetContext(ctx, &res, `
		SELECT reservation_id, event_id, ticket_type_id, quantity, state, created_at, expires_at
		FROM reservations
		WHERE reservation_id = $1
	`, reservationID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Reservation{}, entity.ErrReservationNotFound
	}

	return res, err
}

// Reserve places a hold: checks availability and increments the reserved
// counter atomically with creating the reservation row. Concurrent calls for
// the same ticket type serialize on the row lock, so two of them can never
// both take the last unit.
func (r *PostgresRepository) Reserve(ctx context.Context, reservation entity.Reservation) error {
	return db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		tt, err := lockTicketType(ctx, tx, reservation.TicketTypeID)
		if err != nil {
			return err
		}

		if tt.Available() < reservation.Quantity {
			return entity.ErrInsufficientInventory
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE ticket_types SET reserved = reserved + $2 WHERE ticket_type_id = $1
		`, reservation.TicketTypeID, reservation.Quantity)
		if err != nil {
			return fmt.Errorf("could not increment reserved counter: %w", err)
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO reservations (reservation_id, event_id, ticket_type_id, quantity, state, created_at, expires_at)
			VALUES (:reservation_id, :event_id, :ticket_type_id, :quantity, :state, :created_at, :expires_at)
		`, reservation)
		if err != nil {
			return fmt.Errorf("could not create reservation: %w", err)
		}

		return nil
	})
}

// Commit finalizes a held reservation: moves its quantity from reserved to
// sold, stores the tickets produced by mint and publishes the committed
// event, all in one transaction.
func (r *PostgresRepository) Commit(
	ctx context.Context,
	reservationID string,
	now time.Time,
	mint func(reservation entity.Reservation) ([]entity.Ticket, error),
) ([]entity.Ticket, error) {
	var tickets []entity.Ticket

	err := db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		reservation, err := lockReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		// a swept reservation reads as expired, not finalized
		if reservation.State == entity.ReservationExpired {
			return entity.ErrReservationExpired
		}
		if reservation.State != entity.ReservationHeld {
			return entity.ErrAlreadyFinalized
		}
		if now.After(reservation.ExpiresAt) {
			return entity.ErrReservationExpired
		}

		if _, err := lockTicketType(ctx, tx, reservation.TicketTypeID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE ticket_types
			SET reserved = reserved - $2, sold = sold + $2
			WHERE ticket_type_id = $1
		`, reservation.TicketTypeID, reservation.Quantity)
		if err != nil {
			return fmt.Errorf("could not move reserved units to sold: %w", err)
		}

		tickets, err = mint(reservation)
		if err != nil {
			return fmt.Errorf("could not mint tickets: %w", err)
		}

		for _, ticket := range tickets {
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO tickets (ticket_id, ticket_type_id, event_id, owner_email, state, credential_token)
				VALUES (:ticket_id, :ticket_type_id, :event_id, :owner_email, :state, :credential_token)
			`, ticket)
			if err != nil {
				return fmt.Errorf("could not store ticket: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE reservations SET state = $2 WHERE reservation_id = $1
		`, reservationID, entity.ReservationCommitted)
		if err != nil {
			return fmt.Errorf("could not finalize reservation: %w", err)
		}

		ticketIDs := make([]string, 0, len(tickets))
		ownerEmail := ""
		for _, ticket := range tickets {
			ticketIDs = append(ticketIDs, ticket.ID)
			ownerEmail = ticket.OwnerEmail
		}

		return db.PublishInTx(ctx, tx, entity.ReservationCommitted_v1{
			Header:        entity.NewEventHeaderWithIdempotencyKey(reservationID),
			ReservationID: reservationID,
			EventID:       reservation.EventID,
			TicketTypeID:  reservation.TicketTypeID,
			OwnerEmail:    ownerEmail,
			TicketIDs:     ticketIDs,
		})
	})
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

// Release returns a held reservation's units to the pool. Releasing a
// reservation that is already finalized is a no-op, so duplicate cancel
// signals are harmless.
func (r *PostgresRepository) Release(ctx context.Context, reservationID string) error {
	return db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		reservation, err := lockReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		if reservation.State != entity.ReservationHeld {
			return nil
		}

		return returnUnits(ctx, tx, reservation, entity.ReservationReleased)
	})
}

// SweepExpired reclaims stock from held reservations past their TTL. Each
// reservation is swept in its own transaction; one that was committed or
// released concurrently is skipped.
func (r *PostgresRepository) SweepExpired(ctx context.Context, now time.Time) ([]entity.Reservation, error) {
	var candidates []string
	err := r.db.SelectContext(ctx, &candidates, `
		SELECT reservation_id FROM reservations
		WHERE state = $1 AND expires_at <= $2
	`, entity.ReservationHeld, now)
	if err != nil {
		return nil, fmt.Errorf("could not list expired reservations: %w", err)
	}

	var swept []entity.Reservation
	for _, reservationID := range candidates {
		reservationID := reservationID
		err := db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
			reservation, err := lockReservation(ctx, tx, reservationID)
			if err != nil {
				return err
			}

			// re-check under the lock: Commit or Release may have won
			if reservation.State != entity.ReservationHeld || reservation.ExpiresAt.After(now) {
				return nil
			}

			if err := returnUnits(ctx, tx, reservation, entity.ReservationExpired); err != nil {
				return err
			}

			if err := db.PublishInTx(ctx, tx, entity.ReservationExpired_v1{
				Header:        entity.NewEventHeaderWithIdempotencyKey("expired-" + reservationID),
				ReservationID: reservationID,
				TicketTypeID:  reservation.TicketTypeID,
				Quantity:      reservation.Quantity,
			}); err != nil {
				return err
			}

			reservation.State = entity.ReservationExpired
			swept = append(swept, reservation)
			return nil
		})
		if err != nil {
			return swept, err
		}
	}

	return swept, nil
}

func returnUnits(ctx context.Context, tx *sqlx.Tx, reservation entity.Reservation, state entity.ReservationState) error {
	if _, err := lockTicketType(ctx, tx, reservation.TicketTypeID); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE ticket_types SET reserved = reserved - $2 WHERE ticket_type_id = $1
	`, reservation.TicketTypeID, reservation.Quantity)
	if err != nil {
		return fmt.Errorf("could not decrement reserved counter: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE reservations SET state = $2 WHERE reservation_id = $1
	`, reservation.ID, state)
	if err != nil {
		return fmt.Errorf("could not update reservation state: %w", err)
	}

	return nil
}

func lockTicketType(ctx context.Context, tx *sqlx.Tx, ticketTypeID string) (entity.TicketType, error) {
	var tt entity.TicketType
	err := tx.GetContext(ctx, &tt, `
		SELECT ticket_type_id, event_id, name, capacity, reserved, sold, per_transaction_limit, price_cents, price_currency
		FROM ticket_types
		WHERE ticket_type_id = $1
		FOR UPDATE
	`, ticketTypeID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.TicketType{}, entity.ErrTicketTypeNotFound
	}
	if err != nil {
		return entity.TicketType{}, fmt.Errorf("could not lock ticket type: %w", err)
	}

	return tt, nil
}

func lockReservation(ctx context.Context, tx *sqlx.Tx, reservationID string) (entity.Reservation, error) {
	var reservation entity.Reservation
	err := tx.GetContext(ctx, &reservation, `
		SELECT reservation_id, event_id, ticket_type_id, quantity, state, created_at, expires_at
		FROM reservations
		WHERE reservation_id = $1
		FOR UPDATE
	`, reservationID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.Reservation{}, entity.ErrReservationNotFound
	}
	if err != nil {
		return entity.Reservation{}, fmt.Errorf("could not lock reservation: %w", err)
	}

	return reservation, nil
}
