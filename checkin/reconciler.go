package checkin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/metrics"
)

// Reconciler replays check-ins that scanners recorded while offline.
// Batches and individual entries are both idempotency-keyed, so devices can
// retry an interrupted upload without double-applying anything. Entries are
// applied in client-timestamp order, which makes the merged outcome
// independent of which device uploads first.
type Reconciler struct {
	repo    Repository
	decoder TokenDecoder
}

func NewReconciler(repo Repository, decoder TokenDecoder) *Reconciler {
	if repo == nil {
		panic("missing repo")
	}
	if decoder == nil {
		panic("missing decoder")
	}

	return &Reconciler{repo: repo, decoder: decoder}
}

// SyncBatch applies one device's offline backlog and returns a per-entry
// outcome report. Resubmitting a batch key returns the stored report without
// reprocessing.
func (r *Reconciler) SyncBatch(ctx context.Context, batchKey, deviceID, scannerEventID string, entries []entity.OfflineEntry) ([]entity.SyncResult, error) {
	if batchKey == "" {
		return nil, fmt.Errorf("missing batch key")
	}

	stored, found, err := r.repo.BatchResults(ctx, batchKey)
	if err != nil {
		return nil, fmt.Errorf("could not load batch results: %w", err)
	}
	if found {
		log.FromContext(ctx).WithField("batch_key", batchKey).Info("returning stored results for resubmitted batch")
		return stored, nil
	}

	results := make([]entity.SyncResult, 0, len(entries))
	for _, entry := range orderEntries(entries) {
		results = append(results, r.applyEntry(ctx, scannerEventID, entry))
	}

	if err := r.repo.StoreBatchResults(ctx, batchKey, deviceID, results); err != nil {
		return nil, fmt.Errorf("could not store batch results: %w", err)
	}

	return results, nil
}

func (r *Reconciler) applyEntry(ctx context.Context, scannerEventID string, entry entity.OfflineEntry) entity.SyncResult {
	result := entity.SyncResult{IdempotencyKey: entry.IdempotencyKey}

	if entry.IdempotencyKey == "" {
		result.Status = entity.SyncRejected
		result.Reason = "missing idempotency key"
		return result
	}

	applied, err := r.repo.EntryApplied(ctx, entry.IdempotencyKey)
	if err != nil {
		result.Status = entity.SyncRejected
		result.Reason = "internal error"
		log.FromContext(ctx).WithError(err).Error("could not check entry state")
		return result
	}
	if applied {
		result.Status = entity.SyncSkipped
		return result
	}

	claims, err := r.decoder.Decode(entry.CredentialToken)
	if err != nil {
		metrics.CheckInsRejected.WithLabelValues("invalid_signature").Inc()
		return r.reject(ctx, result, "", "invalid credential signature")
	}
	result.TicketID = claims.TicketID

	if claims.EventID != scannerEventID {
		metrics.CheckInsRejected.WithLabelValues("event_mismatch").Inc()
		return r.reject(ctx, result, claims.TicketID, "credential issued for another event")
	}

	record := entity.CheckInRecord{
		TicketID:    claims.TicketID,
		EventID:     claims.EventID,
		ScannerID:   entry.ScannerID,
		CheckedInAt: entry.ClientTimestamp.UTC(),
		Source:      entity.CheckInSourceOffline,
	}

	_, err = r.repo.CheckIn(ctx, record, entry.IdempotencyKey)
	switch {
	case err == nil:
		metrics.CheckInsAccepted.WithLabelValues(string(entity.CheckInSourceOffline)).Inc()
		result.Status = entity.SyncCheckedIn
	case errors.Is(err, entity.ErrAlreadyUsed):
		metrics.CheckInsRejected.WithLabelValues("already_used").Inc()
		result.Status = entity.SyncAlreadyUsed
		if markErr := r.repo.MarkEntryProcessed(ctx, entry.IdempotencyKey, claims.TicketID, entity.SyncAlreadyUsed); markErr != nil {
			log.FromContext(ctx).WithError(markErr).Error("could not mark entry processed")
		}
	case errors.Is(err, entity.ErrTicketVoid),
		errors.Is(err, entity.ErrTicketExpired),
		errors.Is(err, entity.ErrTicketNotFound):
		metrics.CheckInsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return r.reject(ctx, result, claims.TicketID, err.Error())
	default:
		// Transient failure: leave the entry unmarked so a retried batch
		// can apply it.
		result.Status = entity.SyncRejected
		result.Reason = "internal error"
		log.FromContext(ctx).WithError(err).WithField("ticket_id", claims.TicketID).Error("could not apply offline check-in")
	}

	return result
}

func (r *Reconciler) reject(ctx context.Context, result entity.SyncResult, ticketID, reason string) entity.SyncResult {
	result.Status = entity.SyncRejected
	result.Reason = reason

	if err := r.repo.MarkEntryProcessed(ctx, result.IdempotencyKey, ticketID, entity.SyncRejected); err != nil {
		log.FromContext(ctx).WithError(err).Error("could not mark entry processed")
	}

	return result
}

// orderEntries sorts a backlog by client timestamp, oldest first, so the
// earliest scan of a credential is the one that lands. Ties break on the
// idempotency key to keep replays deterministic.
func orderEntries(entries []entity.OfflineEntry) []entity.OfflineEntry {
	ordered := make([]entity.OfflineEntry, len(entries))
	copy(ordered, entries)

	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].ClientTimestamp.Equal(ordered[j].ClientTimestamp) {
			return ordered[i].ClientTimestamp.Before(ordered[j].ClientTimestamp)
		}
		return ordered[i].IdempotencyKey < ordered[j].IdempotencyKey
	})

	return ordered
}
