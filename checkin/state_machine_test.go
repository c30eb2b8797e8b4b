package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/credential"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

func TestStateMachine_CheckIn(t *testing.T) {
	repo := newFakeRepo()
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-1"},
	}}
	machine := NewStateMachine(repo, decoder)

	at := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)

	record, err := machine.CheckIn(context.Background(), "tok-1", "gate-a", "event-1", at)
	require.NoError(t, err)

	assert.Equal(t, "ticket-1", record.TicketID)
	assert.Equal(t, "gate-a", record.ScannerID)
	assert.Equal(t, at, record.CheckedInAt)
	assert.Equal(t, entity.CheckInSourceLive, record.Source)
}

func TestStateMachine_CheckIn_second_scan_loses(t *testing.T) {
	repo := newFakeRepo()
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-1"},
	}}
	machine := NewStateMachine(repo, decoder)

	first, err := machine.CheckIn(context.Background(), "tok-1", "gate-a", "event-1", time.Now())
	require.NoError(t, err)

	_, err = machine.CheckIn(context.Background(), "tok-1", "gate-b", "event-1", time.Now())
	require.ErrorIs(t, err, entity.ErrAlreadyUsed)

	var alreadyUsed entity.AlreadyUsedError
	require.ErrorAs(t, err, &alreadyUsed)
	assert.Equal(t, first, alreadyUsed.Record, "loser sees the winning record")
}

func TestStateMachine_CheckIn_rejects_wrong_event(t *testing.T) {
	repo := newFakeRepo()
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-2"},
	}}
	machine := NewStateMachine(repo, decoder)

	_, err := machine.CheckIn(context.Background(), "tok-1", "gate-a", "event-1", time.Now())
	require.ErrorIs(t, err, entity.ErrEventMismatch)
	assert.Empty(t, repo.records)
}

func TestStateMachine_CheckIn_rejects_bad_token(t *testing.T) {
	repo := newFakeRepo()
	machine := NewStateMachine(repo, fakeDecoder{claims: map[string]credential.Claims{}})

	_, err := machine.CheckIn(context.Background(), "garbage", "gate-a", "event-1", time.Now())
	require.ErrorIs(t, err, entity.ErrInvalidSignature)
}
