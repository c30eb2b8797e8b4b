package archive_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/db/archive"
)

func TestStore_redelivery_is_a_noop(t *testing.T) {
	ctx := context.Background()
	repo := archive.NewPostgresRepository(db.GetDb(t))

	event := archive.StoredEvent{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC().Truncate(time.Millisecond),
		Name:        "TicketCheckedIn_v1",
		Payload:     []byte(`{"header":{"id":"1"}}`),
	}

	require.NoError(t, repo.Store(ctx, event))
	require.NoError(t, repo.Store(ctx, event))

	all, err := repo.All(ctx)
	require.NoError(t, err)

	stored := lo.Filter(all, func(e archive.StoredEvent, _ int) bool {
		return e.ID == event.ID
	})
	require.Len(t, stored, 1)
	assert.Equal(t, event.Name, stored[0].Name)
	assert.JSONEq(t, string(event.Payload), string(stored[0].Payload))
}
