package checkins

import (
	"context"
	stdSQL "database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

// PostgresRepository owns ticket state transitions and check-in records. The
// check-read-write sequence runs under a row lock on the ticket, so two gates
// presenting the same credential produce exactly one USED transition; the
// primary key on check_ins(ticket_id) is the backstop.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(database *sqlx.DB) *PostgresRepository {
	if database == nil {
		panic("db is nil")
	}
	return &PostgresRepository{db: database}
}

// CheckIn transitions the ticket to USED and writes the record in one
// transaction. entryKey, when non-empty, marks the offline entry as applied
// in the same transaction.
//
// For offline-sourced records an earlier client timestamp supersedes an
// already-synced offline record: the stored record is replaced, which makes
// the reconciled outcome independent of batch arrival order. A
// later-timestamped duplicate gets AlreadyUsedError carrying the prior
// record.
func (r *PostgresRepository) CheckIn(ctx context.Context, record entity.CheckInRecord, entryKey string) (entity.CheckInRecord, error) {
	var result entity.CheckInRecord

	err := db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		state, err := lockTicket(ctx, tx, record.TicketID)
		if err != nil {
			return err
		}

		switch state {
		case entity.TicketIssued, entity.TicketActive:
			// issued tickets are auto-promoted by the transition itself
		case entity.TicketUsed:
			prior, err := getRecord(ctx, tx, record.TicketID)
			if err != nil {
				return err
			}

			supersedes := record.Source == entity.CheckInSourceOffline &&
				prior.Source == entity.CheckInSourceOffline &&
				record.CheckedInAt.Before(prior.CheckedInAt)
			if !supersedes {
				return entity.AlreadyUsedError{Record: prior}
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE check_ins
				SET scanner_id = $2, checked_in_at = $3, source = $4
				WHERE ticket_id = $1
			`, record.TicketID, record.ScannerID, record.CheckedInAt, record.Source)
			if err != nil {
				return fmt.Errorf("could not supersede check-in record: %w", err)
			}

			result = record
			return markEntry(ctx, tx, entryKey, record.TicketID, entity.SyncCheckedIn)
		case entity.TicketVoid:
			return entity.ErrTicketVoid
		case entity.TicketExpired:
			return entity.ErrTicketExpired
		default:
			return fmt.Errorf("ticket %s is in unexpected state %q", record.TicketID, state)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE tickets SET state = $2 WHERE ticket_id = $1
		`, record.TicketID, entity.TicketUsed)
		if err != nil {
			return fmt.Errorf("could not transition ticket to used: %w", err)
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO check_ins (ticket_id, event_id, scanner_id, checked_in_at, source)
			VALUES (:ticket_id, :event_id, :scanner_id, :checked_in_at, :source)
		`, record)
		if err != nil {
			return fmt.Errorf("could not write check-in record: %w", err)
		}

		if err := markEntry(ctx, tx, entryKey, record.TicketID, entity.SyncCheckedIn); err != nil {
			return err
		}

		result = record
		return db.PublishInTx(ctx, tx, entity.TicketCheckedIn_v1{
			Header:      entity.NewEventHeaderWithIdempotencyKey("checkin-" + record.TicketID),
			TicketID:    record.TicketID,
			EventID:     record.EventID,
			ScannerID:   record.ScannerID,
			CheckedInAt: record.CheckedInAt,
			Source:      record.Source,
		})
	})
	if err != nil {
		return entity.CheckInRecord{}, err
	}

	return result, nil
}

// GetRecord returns the check-in record for a ticket.
func (r *PostgresRepository) GetRecord(ctx context.Context, ticketID string) (entity.CheckInRecord, error) {
	var record entity.CheckInRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT ticket_id, event_id, scanner_id, checked_in_at, source
		FROM check_ins
		WHERE ticket_id = $1
	`, ticketID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return entity.CheckInRecord{}, entity.ErrTicketNotFound
	}

	return record, err
}

// Reverse undoes a check-in made at most window ago: deletes the record and
// returns the ticket to ACTIVE.
func (r *PostgresRepository) Reverse(ctx context.Context, ticketID string, now time.Time, window time.Duration) error {
	return db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		state, err := lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if state != entity.TicketUsed {
			return entity.ErrTicketNotFound
		}

		record, err := getRecord(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if now.Sub(record.CheckedInAt) > window {
			return entity.ErrReversalWindowExpired
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM check_ins WHERE ticket_id = $1`, ticketID); err != nil {
			return fmt.Errorf("could not delete check-in record: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE tickets SET state = $2 WHERE ticket_id = $1
		`, ticketID, entity.TicketActive); err != nil {
			return fmt.Errorf("could not return ticket to active: %w", err)
		}

		return db.PublishInTx(ctx, tx, entity.CheckInReversed_v1{
			Header:    entity.NewEventHeaderWithIdempotencyKey("reversal-" + ticketID),
			TicketID:  ticketID,
			EventID:   record.EventID,
			ScannerID: record.ScannerID,
		})
	})
}

// Void invalidates a ticket administratively. Used tickets are refused,
// voiding an already-void ticket is a no-op.
func (r *PostgresRepository) Void(ctx context.Context, ticketID, reason string) error {
	return db.UpdateInTx(ctx, r.db, stdSQL.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		state, err := lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}

		switch state {
		case entity.TicketVoid:
			return nil
		case entity.TicketUsed:
			prior, err := getRecord(ctx, tx, ticketID)
			if err != nil {
				return err
			}
			return entity.AlreadyUsedError{Record: prior}
		case entity.TicketExpired:
			return entity.ErrTicketExpired
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE tickets SET state = $2 WHERE ticket_id = $1
		`, ticketID, entity.TicketVoid); err != nil {
			return fmt.Errorf("could not void ticket: %w", err)
		}

		return db.PublishInTx(ctx, tx, entity.TicketVoided_v1{
			Header:   entity.NewEventHeaderWithIdempotencyKey("void-" + ticketID),
			TicketID: ticketID,
			Reason:   reason,
		})
	})
}

// BatchResults returns the stored results of a previously reconciled batch.
func (r *PostgresRepository) BatchResults(ctx context.Context, batchKey string) ([]entity.SyncResult, bool, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT results FROM sync_batches WHERE batch_key = $1
	`, batchKey)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not load batch results: %w", err)
	}

	var results []entity.SyncResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("could not unmarshal batch results: %w", err)
	}

	return results, true, nil
}

// StoreBatchResults records the outcome of a reconciled batch so a resubmit
// returns the same results without re-applying anything.
func (r *PostgresRepository) StoreBatchResults(ctx context.Context, batchKey, deviceID string, results []entity.SyncResult) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sync_batches (batch_key, device_id, results)
		VALUES ($1, $2, $3)
		ON CONFLICT (batch_key) DO NOTHING
	`, batchKey, deviceID, payload)
	if err != nil {
		return fmt.Errorf("could not store batch results: %w", err)
	}

	return nil
}

// EntryApplied reports whether an offline entry key was processed before, in
// this batch or any earlier one.
func (r *PostgresRepository) EntryApplied(ctx context.Context, entryKey string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT count(*) FROM sync_entries WHERE entry_key = $1
	`, entryKey)
	if err != nil {
		return false, fmt.Errorf("could not look up sync entry: %w", err)
	}

	return count > 0, nil
}

// MarkEntryProcessed records a rejected entry outside the check-in
// transaction, so the device never resubmits it.
func (r *PostgresRepository) MarkEntryProcessed(ctx context.Context, entryKey, ticketID string, status entity.SyncStatus) error {
	var id any
	if ticketID != "" {
		id = ticketID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_entries (entry_key, ticket_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (entry_key) DO NOTHING
	`, entryKey, id, status)
	if err != nil {
		return fmt.Errorf("could not mark sync entry: %w", err)
	}

	return nil
}

func markEntry(ctx context.Context, tx *sqlx.Tx, entryKey, ticketID string, status entity.SyncStatus) error {
	if entryKey == "" {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO sync_entries (entry_key, ticket_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (entry_key) DO NOTHING
	`, entryKey, ticketID, status)
	if err != nil {
		return fmt.Errorf("could not mark sync entry: %w", err)
	}

	return nil
}

func lockTicket(ctx context.Context, tx *sqlx.Tx, ticketID string) (entity.TicketState, error) {
	var state entity.TicketState
	err := tx.GetContext(ctx, &state, `
		SELECT state FROM tickets WHERE ticket_id = $1 FOR UPDATE
	`, ticketID)
	if errors.Is(err, stdSQL.ErrNoRows) {
		return "", entity.ErrTicketNotFound
	}
	if err != nil {
		return "", fmt.Errorf("could not lock ticket: %w", err)
	}

	return state, nil
}

func getRecord(ctx context.Context, tx *sqlx.Tx, ticketID string) (entity.CheckInRecord, error) {
	var record entity.CheckInRecord
	err := tx.GetContext(ctx, &record, `
		SELECT ticket_id, event_id, scanner_id, checked_in_at, source
		FROM check_ins
		WHERE ticket_id = $1
	`, ticketID)
	if err != nil {
		return entity.CheckInRecord{}, fmt.Errorf("could not load check-in record: %w", err)
	}

	return record, nil
}
