package entity

import "time"

type ReservationState string

const (
	ReservationHeld      ReservationState = "held"
	ReservationCommitted ReservationState = "committed"
	ReservationReleased  ReservationState = "released"
	ReservationExpired   ReservationState = "expired"
)

// Reservation is a temporary hold on inventory during checkout. A held
// reservation keeps its quantity counted in TicketType.Reserved until it is
// committed, released, or swept after ExpiresAt.
type Reservation struct {
	ID           string           `db:"reservation_id" json:"reservation_id"`
	EventID      string           `db:"event_id" json:"event_id"`
	TicketTypeID string           `db:"ticket_type_id" json:"ticket_type_id"`
	Quantity     int              `db:"quantity" json:"quantity"`
	State        ReservationState `db:"state" json:"state"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	ExpiresAt    time.Time        `db:"expires_at" json:"expires_at"`
}
