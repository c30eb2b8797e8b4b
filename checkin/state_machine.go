package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/credential"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/metrics"
)

const DefaultReversalWindow = 5 * time.Minute

type Repository interface {
	CheckIn(ctx context.Context, record entity.CheckInRecord, entryKey string) (entity.CheckInRecord, error)
	GetRecord(ctx context.Context, ticketID string) (entity.CheckInRecord, error)
	Reverse(ctx context.Context, ticketID string, now time.Time, window time.Duration) error
	Void(ctx context.Context, ticketID, reason string) error
	BatchResults(ctx context.Context, batchKey string) ([]entity.SyncResult, bool, error)
	StoreBatchResults(ctx context.Context, batchKey, deviceID string, results []entity.SyncResult) error
	EntryApplied(ctx context.Context, entryKey string) (bool, error)
	MarkEntryProcessed(ctx context.Context, entryKey, ticketID string, status entity.SyncStatus) error
}

type TokenDecoder interface {
	Decode(token string) (credential.Claims, error)
}

// StateMachine performs the one-way ISSUED/ACTIVE -> USED transition. The
// repository makes the transition atomic; this layer validates the
// credential and keeps the scanner-facing semantics.
type StateMachine struct {
	repo    Repository
	decoder TokenDecoder
	window  time.Duration
	now     func() time.Time
}

type StateMachineOption func(*StateMachine)

// WithReversalWindow overrides how long after a check-in an operator may
// still reverse it.
func WithReversalWindow(d time.Duration) StateMachineOption {
	return func(m *StateMachine) {
		if d > 0 {
			m.window = d
		}
	}
}

func WithClock(now func() time.Time) StateMachineOption {
	return func(m *StateMachine) {
		m.now = now
	}
}

func NewStateMachine(repo Repository, decoder TokenDecoder, opts ...StateMachineOption) *StateMachine {
	if repo == nil {
		panic("missing repo")
	}
	if decoder == nil {
		panic("missing decoder")
	}

	machine := &StateMachine{
		repo:    repo,
		decoder: decoder,
		window:  DefaultReversalWindow,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(machine)
	}

	return machine
}

// CheckIn validates a presented credential against the scanner's assigned
// event and redeems it. Two gates racing on the same credential get exactly
// one success; the loser receives AlreadyUsedError with the prior record.
func (m *StateMachine) CheckIn(ctx context.Context, token, scannerID, scannerEventID string, at time.Time) (entity.CheckInRecord, error) {
	claims, err := m.decoder.Decode(token)
	if err != nil {
		metrics.CheckInsRejected.WithLabelValues("invalid_signature").Inc()
		log.FromContext(ctx).WithField("scanner_id", scannerID).Warn("rejected credential with invalid signature")
		return entity.CheckInRecord{}, err
	}

	if claims.EventID != scannerEventID {
		metrics.CheckInsRejected.WithLabelValues("event_mismatch").Inc()
		log.FromContext(ctx).
			WithField("scanner_id", scannerID).
			WithField("ticket_id", claims.TicketID).
			Warn("rejected credential issued for another event")
		return entity.CheckInRecord{}, entity.ErrEventMismatch
	}

	if at.IsZero() {
		at = m.now()
	}

	record, err := m.repo.CheckIn(ctx, entity.CheckInRecord{
		TicketID:    claims.TicketID,
		EventID:     claims.EventID,
		ScannerID:   scannerID,
		CheckedInAt: at.UTC(),
		Source:      entity.CheckInSourceLive,
	}, "")
	if err != nil {
		metrics.CheckInsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return entity.CheckInRecord{}, err
	}

	metrics.CheckInsAccepted.WithLabelValues(string(entity.CheckInSourceLive)).Inc()
	return record, nil
}

// Reverse undoes a recent check-in for operator error correction.
func (m *StateMachine) Reverse(ctx context.Context, ticketID string) error {
	return m.repo.Reverse(ctx, ticketID, m.now(), m.window)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, entity.ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, entity.ErrTicketVoid):
		return "void"
	case errors.Is(err, entity.ErrTicketExpired):
		return "expired"
	case errors.Is(err, entity.ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, entity.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, entity.ErrEventMismatch):
		return "event_mismatch"
	default:
		return "error"
	}
}
