package entity

import "time"

type CheckInSource string

const (
	CheckInSourceLive    CheckInSource = "live"
	CheckInSourceOffline CheckInSource = "offline_synced"
)

// CheckInRecord is the result of a successful USED transition. At most one
// exists per ticket (primary key on ticket_id).
type CheckInRecord struct {
	TicketID    string        `db:"ticket_id" json:"ticket_id"`
	EventID     string        `db:"event_id" json:"event_id"`
	ScannerID   string        `db:"scanner_id" json:"scanner_id"`
	CheckedInAt time.Time     `db:"checked_in_at" json:"checked_in_at"`
	Source      CheckInSource `db:"source" json:"source"`
}

// OfflineEntry is one check-in attempt buffered on a scanning device while it
// was disconnected.
type OfflineEntry struct {
	CredentialToken string    `json:"credential_token"`
	ScannerID       string    `json:"scanner_id"`
	ClientTimestamp time.Time `json:"client_timestamp"`
	IdempotencyKey  string    `json:"idempotency_key"`
}

type SyncStatus string

const (
	SyncCheckedIn   SyncStatus = "checked_in"
	SyncAlreadyUsed SyncStatus = "already_used"
	SyncSkipped     SyncStatus = "skipped"
	SyncRejected    SyncStatus = "rejected"
)

// SyncResult reports the outcome of one offline entry. Rejections carry a
// reason so the device can show why the entry was discarded.
type SyncResult struct {
	IdempotencyKey string     `json:"idempotency_key"`
	TicketID       string     `json:"ticket_id,omitempty"`
	Status         SyncStatus `json:"status"`
	Reason         string     `json:"reason,omitempty"`
}

// AttendanceStats is the read-only attendance projection for one event.
type AttendanceStats struct {
	EventID   string  `json:"event_id"`
	Total     int     `json:"total"`
	CheckedIn int     `json:"checked_in"`
	NoShow    int     `json:"no_show"`
	Rate      float64 `json:"rate"`
}
