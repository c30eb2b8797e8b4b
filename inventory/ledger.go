package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/credential"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/metrics"
)

const DefaultHoldTTL = 10 * time.Minute

type Repository interface {
	CreateEvent(ctx context.Context, event entity.Event) error
	GetEvent(ctx context.Context, eventID string) (entity.Event, error)
	CreateTicketType(ctx context.Context, tt entity.TicketType) error
	GetTicketType(ctx context.Context, ticketTypeID string) (entity.TicketType, error)
	GetReservation(ctx context.Context, reservationID string) (entity.Reservation, error)
	Reserve(ctx context.Context, reservation entity.Reservation) error
	Commit(ctx context.Context, reservationID string, now time.Time, mint func(entity.Reservation) ([]entity.Ticket, error)) ([]entity.Ticket, error)
	Release(ctx context.Context, reservationID string) error
	SweepExpired(ctx context.Context, now time.Time) ([]entity.Reservation, error)
}

type PaymentConfirmation struct {
	Approved  bool
	Reference string
}

type PaymentConfirmer interface {
	Confirm(ctx context.Context, reservationID string, amountCents int64, currency string) (PaymentConfirmation, error)
}

// Ledger drives the reserve -> pay -> commit flow. Payment confirmation
// happens between Reserve and Commit, never inside a locked inventory
// transaction.
type Ledger struct {
	repo     Repository
	issuer   *credential.Issuer
	payments PaymentConfirmer
	holdTTL  time.Duration
	now      func() time.Time
}

type LedgerOption func(*Ledger)

// WithHoldTTL overrides how long a reservation holds stock before the
// sweeper reclaims it.
func WithHoldTTL(d time.Duration) LedgerOption {
	return func(l *Ledger) {
		if d > 0 {
			l.holdTTL = d
		}
	}
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(repo Repository, issuer *credential.Issuer, payments PaymentConfirmer, opts ...LedgerOption) *Ledger {
	if repo == nil {
		panic("missing repo")
	}
	if issuer == nil {
		panic("missing issuer")
	}
	if payments == nil {
		panic("missing payments")
	}

	ledger := &Ledger{
		repo:     repo,
		issuer:   issuer,
		payments: payments,
		holdTTL:  DefaultHoldTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(ledger)
	}

	return ledger
}

func (l *Ledger) CreateEvent(ctx context.Context, event entity.Event) (entity.Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.TransactionLimit != nil && *event.TransactionLimit < 1 {
		return entity.Event{}, errors.New("transaction limit must be positive")
	}

	return event, l.repo.CreateEvent(ctx, event)
}

func (l *Ledger) CreateTicketType(ctx context.Context, tt entity.TicketType) (entity.TicketType, error) {
	if tt.ID == "" {
		tt.ID = uuid.NewString()
	}
	if tt.Capacity < 0 {
		return entity.TicketType{}, errors.New("capacity must not be negative")
	}
	if tt.PerTransactionLimit != nil && *tt.PerTransactionLimit < 1 {
		return entity.TicketType{}, errors.New("per-transaction limit must be positive")
	}
	if _, err := l.repo.GetEvent(ctx, tt.EventID); err != nil {
		return entity.TicketType{}, err
	}

	return tt, l.repo.CreateTicketType(ctx, tt)
}

func (l *Ledger) GetTicketType(ctx context.Context, ticketTypeID string) (entity.TicketType, error) {
	return l.repo.GetTicketType(ctx, ticketTypeID)
}

type ReserveInput struct {
	EventID      string
	TicketTypeID string
	Quantity     int
	Cart         CartContext
}

// Reserve validates purchase limits and places a hold. The repository
// re-checks availability under the row lock, so a stale read here can only
// produce a typed failure, never an oversell.
func (l *Ledger) Reserve(ctx context.Context, in ReserveInput) (entity.Reservation, error) {
	tt, err := l.repo.GetTicketType(ctx, in.TicketTypeID)
	if err != nil {
		return entity.Reservation{}, err
	}
	if in.EventID != "" && in.EventID != tt.EventID {
		return entity.Reservation{}, entity.ErrTicketTypeNotFound
	}

	event, err := l.repo.GetEvent(ctx, tt.EventID)
	if err != nil {
		return entity.Reservation{}, err
	}

	if err := ValidateQuantity(tt, event.TransactionLimit, in.Quantity, in.Cart); err != nil {
		return entity.Reservation{}, err
	}

	now := l.now()
	reservation := entity.Reservation{
		ID:           uuid.NewString(),
		EventID:      tt.EventID,
		TicketTypeID: tt.ID,
		Quantity:     in.Quantity,
		State:        entity.ReservationHeld,
		CreatedAt:    now,
		ExpiresAt:    now.Add(l.holdTTL),
	}

	if err := l.repo.Reserve(ctx, reservation); err != nil {
		return entity.Reservation{}, err
	}

	metrics.ReservationsCreated.Inc()
	return reservation, nil
}

type CommitInput struct {
	ReservationID string
	OwnerEmail    string
}

// Commit confirms payment and finalizes the reservation, minting one
// credential-bearing ticket per unit.
func (l *Ledger) Commit(ctx context.Context, in CommitInput) ([]entity.Ticket, error) {
	reservation, err := l.repo.GetReservation(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.State == entity.ReservationExpired {
		return nil, entity.ErrReservationExpired
	}
	if reservation.State != entity.ReservationHeld {
		return nil, entity.ErrAlreadyFinalized
	}
	if l.now().After(reservation.ExpiresAt) {
		return nil, entity.ErrReservationExpired
	}

	tt, err := l.repo.GetTicketType(ctx, reservation.TicketTypeID)
	if err != nil {
		return nil, err
	}

	amountCents := tt.PriceCents * int64(reservation.Quantity)
	confirmation, err := l.payments.Confirm(ctx, reservation.ID, amountCents, tt.PriceCurrency)
	if err != nil {
		return nil, fmt.Errorf("could not confirm payment: %w", err)
	}
	if !confirmation.Approved {
		return nil, entity.ErrPaymentDeclined
	}

	return l.repo.Commit(ctx, reservation.ID, l.now(), func(reservation entity.Reservation) ([]entity.Ticket, error) {
		tickets := make([]entity.Ticket, 0, reservation.Quantity)
		for i := 0; i < reservation.Quantity; i++ {
			ticket := entity.Ticket{
				ID:           uuid.NewString(),
				TicketTypeID: reservation.TicketTypeID,
				EventID:      reservation.EventID,
				OwnerEmail:   in.OwnerEmail,
				State:        entity.TicketActive,
			}

			token, err := l.issuer.Issue(ticket)
			if err != nil {
				return nil, err
			}
			ticket.CredentialToken = token

			tickets = append(tickets, ticket)
		}

		return tickets, nil
	})
}

// Release abandons a held reservation. Safe to call more than once.
func (l *Ledger) Release(ctx context.Context, reservationID string) error {
	return l.repo.Release(ctx, reservationID)
}
