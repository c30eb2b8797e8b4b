package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/credential"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

type fakeRepo struct {
	Repository

	reservation entity.Reservation
	committed   bool
}

func (r *fakeRepo) GetReservation(ctx context.Context, reservationID string) (entity.Reservation, error) {
	return r.reservation, nil
}

func (r *fakeRepo) Commit(
	ctx context.Context,
	reservationID string,
	now time.Time,
	mint func(entity.Reservation) ([]entity.Ticket, error),
) ([]entity.Ticket, error) {
	r.committed = true
	return mint(r.reservation)
}

type approvingPayments struct{}

func (approvingPayments) Confirm(ctx context.Context, reservationID string, amountCents int64, currency string) (PaymentConfirmation, error) {
	return PaymentConfirmation{Approved: true, Reference: "ref"}, nil
}

func newTestLedger(t *testing.T, repo Repository) *Ledger {
	t.Helper()

	keys, err := credential.NewDerivedKeyProvider("ledger-test-secret")
	require.NoError(t, err)

	return NewLedger(repo, credential.NewIssuer(keys), approvingPayments{})
}

func TestCommit_swept_reservation_reports_expiry(t *testing.T) {
	repo := &fakeRepo{
		reservation: entity.Reservation{
			ID:           "res-1",
			EventID:      "ev-1",
			TicketTypeID: "tt-1",
			Quantity:     1,
			State:        entity.ReservationExpired,
			ExpiresAt:    time.Now().Add(-time.Hour),
		},
	}
	ledger := newTestLedger(t, repo)

	_, err := ledger.Commit(context.Background(), CommitInput{ReservationID: "res-1", OwnerEmail: "buyer@example.com"})
	require.ErrorIs(t, err, entity.ErrReservationExpired)
	require.False(t, repo.committed)
}

func TestCommit_finalized_reservation(t *testing.T) {
	repo := &fakeRepo{
		reservation: entity.Reservation{
			ID:        "res-1",
			Quantity:  1,
			State:     entity.ReservationCommitted,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	ledger := newTestLedger(t, repo)

	_, err := ledger.Commit(context.Background(), CommitInput{ReservationID: "res-1", OwnerEmail: "buyer@example.com"})
	require.ErrorIs(t, err, entity.ErrAlreadyFinalized)
}
