package entity

type VoidTicket struct {
	Header   EventHeader `json:"header"`
	TicketID string      `json:"ticket_id"`
	Reason   string      `json:"reason"`
}
