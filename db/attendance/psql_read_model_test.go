package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db/attendance"
	inventoryDB "github.com/Deibyd07/Gestion-de-Eventos-sub005/db/inventory"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

func insertTicket(t *testing.T, database *sqlx.DB, eventID, ticketTypeID string, state entity.TicketState) {
	t.Helper()

	_, err := database.ExecContext(context.Background(), `
		INSERT INTO tickets (ticket_id, ticket_type_id, event_id, owner_email, state, credential_token)
		VALUES ($1, $2, $3, 'owner@example.com', $4, $5)
	`, uuid.NewString(), ticketTypeID, eventID, state, "token-"+uuid.NewString())
	require.NoError(t, err)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	database := db.GetDb(t)
	readModel := attendance.NewPostgresReadModel(database)

	inventoryRepo := inventoryDB.NewPostgresRepository(database)

	event := entity.Event{
		ID:       uuid.NewString(),
		Name:     "test event",
		StartsAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, inventoryRepo.CreateEvent(ctx, event))

	tt := entity.TicketType{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		Name:          "general admission",
		Capacity:      100,
		PriceCurrency: "EUR",
	}
	require.NoError(t, inventoryRepo.CreateTicketType(ctx, tt))

	stats, err := readModel.Stats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.Rate)

	insertTicket(t, database, event.ID, tt.ID, entity.TicketUsed)
	insertTicket(t, database, event.ID, tt.ID, entity.TicketActive)
	insertTicket(t, database, event.ID, tt.ID, entity.TicketActive)
	insertTicket(t, database, event.ID, tt.ID, entity.TicketUsed)
	// voided and expired tickets do not count towards attendance
	insertTicket(t, database, event.ID, tt.ID, entity.TicketVoid)
	insertTicket(t, database, event.ID, tt.ID, entity.TicketExpired)

	stats, err = readModel.Stats(ctx, event.ID)
	require.NoError(t, err)

	assert.Equal(t, event.ID, stats.EventID)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.CheckedIn)
	assert.Equal(t, 2, stats.NoShow)
	assert.InDelta(t, 0.5, stats.Rate, 0.001)
}
