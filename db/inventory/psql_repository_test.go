package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db"
	inventoryDB "github.com/Deibyd07/Gestion-de-Eventos-sub005/db/inventory"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

func setupTicketType(t *testing.T, repo *inventoryDB.PostgresRepository, capacity int) entity.TicketType {
	t.Helper()
	ctx := context.Background()

	event := entity.Event{
		ID:       uuid.NewString(),
		Name:     "test event",
		StartsAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repo.CreateEvent(ctx, event))

	tt := entity.TicketType{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		Name:          "general admission",
		Capacity:      capacity,
		PriceCents:    5000,
		PriceCurrency: "EUR",
	}
	require.NoError(t, repo.CreateTicketType(ctx, tt))

	return tt
}

func heldReservation(tt entity.TicketType, quantity int, expiresAt time.Time) entity.Reservation {
	now := time.Now().UTC()
	return entity.Reservation{
		ID:           uuid.NewString(),
		EventID:      tt.EventID,
		TicketTypeID: tt.ID,
		Quantity:     quantity,
		State:        entity.ReservationHeld,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}
}

func TestReserve_concurrent_takes_exactly_capacity(t *testing.T) {
	ctx := context.Background()
	repo := inventoryDB.NewPostgresRepository(db.GetDb(t))

	const capacity = 5
	const attempts = 20

	tt := setupTicketType(t, repo, capacity)

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Reserve(ctx, heldReservation(tt, 1, time.Now().Add(time.Minute)))
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, entity.ErrInsufficientInventory):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, attempts-capacity, rejected)

	stored, err := repo.GetTicketType(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, stored.Reserved)
	assert.Equal(t, 0, stored.Sold)
	assert.Equal(t, 0, stored.Available())
}

func TestCommit_mints_tickets_and_moves_counters(t *testing.T) {
	ctx := context.Background()
	repo := inventoryDB.NewPostgresRepository(db.GetDb(t))

	tt := setupTicketType(t, repo, 10)

	reservation := heldReservation(tt, 2, time.Now().Add(time.Minute))
	require.NoError(t, repo.Reserve(ctx, reservation))

	tickets, err := repo.Commit(ctx, reservation.ID, time.Now(), func(r entity.Reservation) ([]entity.Ticket, error) {
		minted := make([]entity.Ticket, 0, r.Quantity)
		for i := 0; i < r.Quantity; i++ {
			minted = append(minted, entity.Ticket{
				ID:              uuid.NewString(),
				TicketTypeID:    r.TicketTypeID,
				EventID:         r.EventID,
				OwnerEmail:      "owner@example.com",
				State:           entity.TicketActive,
				CredentialToken: "token-" + uuid.NewString(),
			})
		}
		return minted, nil
	})
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	stored, err := repo.GetTicketType(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Reserved)
	assert.Equal(t, 2, stored.Sold)

	// committing twice must not mint twice
	_, err = repo.Commit(ctx, reservation.ID, time.Now(), func(r entity.Reservation) ([]entity.Ticket, error) {
		return nil, nil
	})
	require.ErrorIs(t, err, entity.ErrAlreadyFinalized)
}

func TestCommit_expired_reservation(t *testing.T) {
	ctx := context.Background()
	repo := inventoryDB.NewPostgresRepository(db.GetDb(t))

	tt := setupTicketType(t, repo, 10)

	reservation := heldReservation(tt, 1, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Reserve(ctx, reservation))

	_, err := repo.Commit(ctx, reservation.ID, time.Now(), func(r entity.Reservation) ([]entity.Ticket, error) {
		return nil, nil
	})
	require.ErrorIs(t, err, entity.ErrReservationExpired)
}

func TestSweepExpired_reclaims_units(t *testing.T) {
	ctx := context.Background()
	repo := inventoryDB.NewPostgresRepository(db.GetDb(t))

	tt := setupTicketType(t, repo, 3)

	expired := heldReservation(tt, 2, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Reserve(ctx, expired))

	active := heldReservation(tt, 1, time.Now().Add(time.Minute))
	require.NoError(t, repo.Reserve(ctx, active))

	swept, err := repo.SweepExpired(ctx, time.Now())
	require.NoError(t, err)

	sweptIDs := make([]string, 0, len(swept))
	for _, r := range swept {
		sweptIDs = append(sweptIDs, r.ID)
	}
	assert.Contains(t, sweptIDs, expired.ID)
	assert.NotContains(t, sweptIDs, active.ID)

	stored, err := repo.GetTicketType(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Reserved, "only the live hold keeps its units")

	// a late commit on the swept reservation reports expiry, not finalization
	_, err = repo.Commit(ctx, expired.ID, time.Now(), func(r entity.Reservation) ([]entity.Ticket, error) {
		return nil, nil
	})
	require.ErrorIs(t, err, entity.ErrReservationExpired)
}

func TestRelease_is_idempotent(t *testing.T) {
	ctx := context.Background()
	repo := inventoryDB.NewPostgresRepository(db.GetDb(t))

	tt := setupTicketType(t, repo, 4)

	reservation := heldReservation(tt, 3, time.Now().Add(time.Minute))
	require.NoError(t, repo.Reserve(ctx, reservation))

	require.NoError(t, repo.Release(ctx, reservation.ID))
	require.NoError(t, repo.Release(ctx, reservation.ID))

	stored, err := repo.GetTicketType(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Reserved, "units must be returned exactly once")

	released, err := repo.GetReservation(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReleased, released.State)
}
