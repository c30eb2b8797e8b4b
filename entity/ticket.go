package entity

type TicketState string

const (
	TicketIssued  TicketState = "issued"
	TicketActive  TicketState = "active"
	TicketUsed    TicketState = "used"
	TicketVoid    TicketState = "void"
	TicketExpired TicketState = "expired"
)

// Ticket is one purchased seat. The credential token is minted once, at
// commit time, and never changes afterwards.
type Ticket struct {
	ID              string      `db:"ticket_id" json:"ticket_id"`
	TicketTypeID    string      `db:"ticket_type_id" json:"ticket_type_id"`
	EventID         string      `db:"event_id" json:"event_id"`
	OwnerEmail      string      `db:"owner_email" json:"owner_email"`
	State           TicketState `db:"state" json:"state"`
	CredentialToken string      `db:"credential_token" json:"credential_token"`
}
