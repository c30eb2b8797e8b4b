package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
	CREATE TABLE IF NOT EXISTS events (
		event_id          UUID PRIMARY KEY,
		name              TEXT NOT NULL,
		starts_at         TIMESTAMPTZ NOT NULL,
		ends_at           TIMESTAMPTZ NULL,
		transaction_limit INT NULL CHECK (transaction_limit > 0)
	);

	CREATE TABLE IF NOT EXISTS ticket_types (
		ticket_type_id        UUID PRIMARY KEY,
		event_id              UUID NOT NULL REFERENCES events (event_id),
		name                  TEXT NOT NULL,
		capacity              INT NOT NULL CHECK (capacity >= 0),
		reserved              INT NOT NULL DEFAULT 0 CHECK (reserved >= 0),
		sold                  INT NOT NULL DEFAULT 0 CHECK (sold >= 0),
		per_transaction_limit INT NULL CHECK (per_transaction_limit > 0),
		price_cents           BIGINT NOT NULL DEFAULT 0,
		price_currency        TEXT NOT NULL DEFAULT 'EUR',
		CHECK (reserved + sold <= capacity)
	);

	CREATE TABLE IF NOT EXISTS reservations (
		reservation_id UUID PRIMARY KEY,
		event_id       UUID NOT NULL REFERENCES events (event_id),
		ticket_type_id UUID NOT NULL REFERENCES ticket_types (ticket_type_id),
		quantity       INT NOT NULL CHECK (quantity > 0),
		state          TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		expires_at     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS reservations_held_expiry_idx
		ON reservations (expires_at) WHERE state = 'held';

	CREATE TABLE IF NOT EXISTS tickets (
		ticket_id        UUID PRIMARY KEY,
		ticket_type_id   UUID NOT NULL REFERENCES ticket_types (ticket_type_id),
		event_id         UUID NOT NULL REFERENCES events (event_id),
		owner_email      TEXT NOT NULL,
		state            TEXT NOT NULL,
		credential_token TEXT NOT NULL UNIQUE
	);
	CREATE INDEX IF NOT EXISTS tickets_event_idx ON tickets (event_id);

	CREATE TABLE IF NOT EXISTS check_ins (
		ticket_id     UUID PRIMARY KEY REFERENCES tickets (ticket_id),
		event_id      UUID NOT NULL,
		scanner_id    TEXT NOT NULL,
		checked_in_at TIMESTAMPTZ NOT NULL,
		source        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_batches (
		batch_key  TEXT PRIMARY KEY,
		device_id  TEXT NOT NULL,
		results    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS sync_entries (
		entry_key  TEXT PRIMARY KEY,
		ticket_id  UUID NULL,
		status     TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS event_archive (
		event_id      UUID PRIMARY KEY,
		published_at  TIMESTAMPTZ NOT NULL,
		event_name    TEXT NOT NULL,
		event_payload JSONB NOT NULL
	);
`

// InitializeDatabaseSchema creates all engine tables. Safe to call on every
// startup; the watermill outbox tables are created by the SQL subscriber
// itself.
func InitializeDatabaseSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}
