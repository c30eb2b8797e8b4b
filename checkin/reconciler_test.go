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

type fakeDecoder struct {
	claims map[string]credential.Claims
}

func (d fakeDecoder) Decode(token string) (credential.Claims, error) {
	claims, ok := d.claims[token]
	if !ok {
		return credential.Claims{}, entity.ErrInvalidSignature
	}
	return claims, nil
}

type fakeRepo struct {
	records      map[string]entity.CheckInRecord
	applied      map[string]bool
	batches      map[string][]entity.SyncResult
	checkInOrder []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: map[string]entity.CheckInRecord{},
		applied: map[string]bool{},
		batches: map[string][]entity.SyncResult{},
	}
}

func (r *fakeRepo) CheckIn(_ context.Context, record entity.CheckInRecord, entryKey string) (entity.CheckInRecord, error) {
	r.checkInOrder = append(r.checkInOrder, record.TicketID)

	if prior, ok := r.records[record.TicketID]; ok {
		return entity.CheckInRecord{}, entity.AlreadyUsedError{Record: prior}
	}

	r.records[record.TicketID] = record
	if entryKey != "" {
		r.applied[entryKey] = true
	}
	return record, nil
}

func (r *fakeRepo) GetRecord(_ context.Context, ticketID string) (entity.CheckInRecord, error) {
	record, ok := r.records[ticketID]
	if !ok {
		return entity.CheckInRecord{}, entity.ErrTicketNotFound
	}
	return record, nil
}

func (r *fakeRepo) Reverse(_ context.Context, ticketID string, _ time.Time, _ time.Duration) error {
	delete(r.records, ticketID)
	return nil
}

func (r *fakeRepo) Void(_ context.Context, _, _ string) error { return nil }

func (r *fakeRepo) BatchResults(_ context.Context, batchKey string) ([]entity.SyncResult, bool, error) {
	results, ok := r.batches[batchKey]
	return results, ok, nil
}

func (r *fakeRepo) StoreBatchResults(_ context.Context, batchKey, _ string, results []entity.SyncResult) error {
	r.batches[batchKey] = results
	return nil
}

func (r *fakeRepo) EntryApplied(_ context.Context, entryKey string) (bool, error) {
	return r.applied[entryKey], nil
}

func (r *fakeRepo) MarkEntryProcessed(_ context.Context, entryKey, _ string, _ entity.SyncStatus) error {
	r.applied[entryKey] = true
	return nil
}

func TestOrderEntries(t *testing.T) {
	base := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	entries := []entity.OfflineEntry{
		{IdempotencyKey: "c", ClientTimestamp: base.Add(2 * time.Minute)},
		{IdempotencyKey: "a", ClientTimestamp: base},
		{IdempotencyKey: "b", ClientTimestamp: base},
	}

	ordered := orderEntries(entries)

	require.Len(t, ordered, 3)
	assert.Equal(t, "a", ordered[0].IdempotencyKey)
	assert.Equal(t, "b", ordered[1].IdempotencyKey)
	assert.Equal(t, "c", ordered[2].IdempotencyKey)

	// input untouched
	assert.Equal(t, "c", entries[0].IdempotencyKey)
}

func TestSyncBatch_applies_entries_oldest_first(t *testing.T) {
	repo := newFakeRepo()
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-1"},
		"tok-2": {TicketID: "ticket-2", EventID: "event-1"},
	}}
	reconciler := NewReconciler(repo, decoder)

	base := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	results, err := reconciler.SyncBatch(context.Background(), "batch-1", "device-1", "event-1", []entity.OfflineEntry{
		{CredentialToken: "tok-2", ScannerID: "gate-b", ClientTimestamp: base.Add(time.Minute), IdempotencyKey: "k2"},
		{CredentialToken: "tok-1", ScannerID: "gate-a", ClientTimestamp: base, IdempotencyKey: "k1"},
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, entity.SyncCheckedIn, results[0].Status)
	assert.Equal(t, "ticket-1", results[0].TicketID)
	assert.Equal(t, entity.SyncCheckedIn, results[1].Status)
	assert.Equal(t, "ticket-2", results[1].TicketID)

	assert.Equal(t, []string{"ticket-1", "ticket-2"}, repo.checkInOrder)
}

func TestSyncBatch_resubmit_returns_stored_results(t *testing.T) {
	repo := newFakeRepo()
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-1"},
	}}
	reconciler := NewReconciler(repo, decoder)

	entries := []entity.OfflineEntry{
		{CredentialToken: "tok-1", ScannerID: "gate-a", ClientTimestamp: time.Now(), IdempotencyKey: "k1"},
	}

	first, err := reconciler.SyncBatch(context.Background(), "batch-1", "device-1", "event-1", entries)
	require.NoError(t, err)

	again, err := reconciler.SyncBatch(context.Background(), "batch-1", "device-1", "event-1", entries)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Len(t, repo.checkInOrder, 1, "resubmitted batch must not reprocess entries")
}

func TestSyncBatch_skips_already_applied_entries(t *testing.T) {
	repo := newFakeRepo()
	repo.applied["k1"] = true
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-1"},
	}}
	reconciler := NewReconciler(repo, decoder)

	results, err := reconciler.SyncBatch(context.Background(), "batch-1", "device-1", "event-1", []entity.OfflineEntry{
		{CredentialToken: "tok-1", ScannerID: "gate-a", ClientTimestamp: time.Now(), IdempotencyKey: "k1"},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, entity.SyncSkipped, results[0].Status)
	assert.Empty(t, repo.checkInOrder)
}

func TestSyncBatch_conflicting_entry_reports_already_used(t *testing.T) {
	repo := newFakeRepo()
	repo.records["ticket-1"] = entity.CheckInRecord{
		TicketID:  "ticket-1",
		EventID:   "event-1",
		ScannerID: "gate-a",
		Source:    entity.CheckInSourceLive,
	}
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-1": {TicketID: "ticket-1", EventID: "event-1"},
	}}
	reconciler := NewReconciler(repo, decoder)

	results, err := reconciler.SyncBatch(context.Background(), "batch-1", "device-1", "event-1", []entity.OfflineEntry{
		{CredentialToken: "tok-1", ScannerID: "gate-b", ClientTimestamp: time.Now(), IdempotencyKey: "k1"},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, entity.SyncAlreadyUsed, results[0].Status)
	assert.Equal(t, "ticket-1", results[0].TicketID)
	assert.True(t, repo.applied["k1"], "conflicting entry must not be replayed by a retry")
}

func TestSyncBatch_rejects_bad_entries(t *testing.T) {
	repo := newFakeRepo()
	decoder := fakeDecoder{claims: map[string]credential.Claims{
		"tok-other": {TicketID: "ticket-1", EventID: "event-2"},
	}}
	reconciler := NewReconciler(repo, decoder)

	results, err := reconciler.SyncBatch(context.Background(), "batch-1", "device-1", "event-1", []entity.OfflineEntry{
		{CredentialToken: "garbage", ScannerID: "gate-a", ClientTimestamp: time.Now(), IdempotencyKey: "k1"},
		{CredentialToken: "tok-other", ScannerID: "gate-a", ClientTimestamp: time.Now(), IdempotencyKey: "k2"},
		{CredentialToken: "whatever", ScannerID: "gate-a", ClientTimestamp: time.Now()},
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, entity.SyncRejected, result.Status)
		assert.NotEmpty(t, result.Reason)
	}
}
