package entity

import "time"

// Event is a published event with its own inventory pools. TransactionLimit,
// when set, caps the quantity of any single checkout across all ticket types
// of the event. EndsAt, when set, closes the admission window: active tickets
// of an ended event are swept to expired.
type Event struct {
	ID               string     `db:"event_id" json:"event_id"`
	Name             string     `db:"name" json:"name"`
	StartsAt         time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt           *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	TransactionLimit *int       `db:"transaction_limit" json:"transaction_limit,omitempty"`
}

// TicketType is a priced admission category with its own inventory counters.
// Invariant: Reserved + Sold <= Capacity at all times.
type TicketType struct {
	ID                  string `db:"ticket_type_id" json:"ticket_type_id"`
	EventID             string `db:"event_id" json:"event_id"`
	Name                string `db:"name" json:"name"`
	Capacity            int    `db:"capacity" json:"capacity"`
	Reserved            int    `db:"reserved" json:"reserved"`
	Sold                int    `db:"sold" json:"sold"`
	PerTransactionLimit *int   `db:"per_transaction_limit" json:"per_transaction_limit,omitempty"`
	PriceCents          int64  `db:"price_cents" json:"price_cents"`
	PriceCurrency       string `db:"price_currency" json:"price_currency"`
}

// Available is the stock still purchasable right now.
func (t TicketType) Available() int {
	return t.Capacity - t.Reserved - t.Sold
}
