package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type ReservationCommitted_v1 struct {
	Header        EventHeader `json:"header"`
	ReservationID string      `json:"reservation_id"`
	EventID       string      `json:"event_id"`
	TicketTypeID  string      `json:"ticket_type_id"`
	OwnerEmail    string      `json:"owner_email"`
	TicketIDs     []string    `json:"ticket_ids"`
}

type ReservationExpired_v1 struct {
	Header        EventHeader `json:"header"`
	ReservationID string      `json:"reservation_id"`
	TicketTypeID  string      `json:"ticket_type_id"`
	Quantity      int         `json:"quantity"`
}

type TicketCheckedIn_v1 struct {
	Header      EventHeader   `json:"header"`
	TicketID    string        `json:"ticket_id"`
	EventID     string        `json:"event_id"`
	ScannerID   string        `json:"scanner_id"`
	CheckedInAt time.Time     `json:"checked_in_at"`
	Source      CheckInSource `json:"source"`
}

type CheckInReversed_v1 struct {
	Header    EventHeader `json:"header"`
	TicketID  string      `json:"ticket_id"`
	EventID   string      `json:"event_id"`
	ScannerID string      `json:"scanner_id"`
}

type TicketVoided_v1 struct {
	Header   EventHeader `json:"header"`
	TicketID string      `json:"ticket_id"`
	Reason   string      `json:"reason"`
}
