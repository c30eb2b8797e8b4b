package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

type fakeStateMachine struct {
	token     string
	scannerID string
	eventID   string
	at        time.Time
}

func (f *fakeStateMachine) CheckIn(ctx context.Context, token, scannerID, scannerEventID string, at time.Time) (entity.CheckInRecord, error) {
	f.token = token
	f.scannerID = scannerID
	f.eventID = scannerEventID
	f.at = at
	return entity.CheckInRecord{TicketID: "t-1", EventID: scannerEventID, ScannerID: scannerID}, nil
}

func (f *fakeStateMachine) Reverse(ctx context.Context, ticketID string) error {
	return nil
}

type fakeReconciler struct {
	batchKey string
}

func (f *fakeReconciler) SyncBatch(ctx context.Context, batchKey, deviceID, scannerEventID string, entries []entity.OfflineEntry) ([]entity.SyncResult, error) {
	f.batchKey = batchKey
	return []entity.SyncResult{}, nil
}

func postJSON(path, body string, header map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return req, httptest.NewRecorder()
}

func TestPostCheckIn_passes_scanner_timestamp(t *testing.T) {
	machine := &fakeStateMachine{}
	server := Server{checkIns: machine}

	req, rec := postJSON(
		"/check-ins",
		`{"credential_token":"tok","scanner_id":"gate-a","event_id":"ev-1","at":"2026-06-01T18:00:00Z"}`,
		nil,
	)
	require.NoError(t, server.PostCheckIn(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "tok", machine.token)
	assert.Equal(t, time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC), machine.at)
}

func TestPostCheckIn_without_timestamp_leaves_it_to_the_server_clock(t *testing.T) {
	machine := &fakeStateMachine{}
	server := Server{checkIns: machine}

	req, rec := postJSON(
		"/check-ins",
		`{"credential_token":"tok","scanner_id":"gate-a","event_id":"ev-1"}`,
		nil,
	)
	require.NoError(t, server.PostCheckIn(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, machine.at.IsZero())
}

func TestPostSyncBatch_key_from_body(t *testing.T) {
	reconciler := &fakeReconciler{}
	server := Server{reconciler: reconciler}

	req, rec := postJSON(
		"/check-ins/sync",
		`{"device_id":"dev-1","event_id":"ev-1","batch_idempotency_key":"batch-1","entries":[]}`,
		nil,
	)
	require.NoError(t, server.PostSyncBatch(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "batch-1", reconciler.batchKey)
}

func TestPostSyncBatch_key_from_header(t *testing.T) {
	reconciler := &fakeReconciler{}
	server := Server{reconciler: reconciler}

	req, rec := postJSON(
		"/check-ins/sync",
		`{"device_id":"dev-1","event_id":"ev-1","entries":[]}`,
		map[string]string{"Idempotency-Key": "batch-2"},
	)
	require.NoError(t, server.PostSyncBatch(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "batch-2", reconciler.batchKey)
}

func TestPostSyncBatch_missing_key(t *testing.T) {
	server := Server{reconciler: &fakeReconciler{}}

	req, rec := postJSON(
		"/check-ins/sync",
		`{"device_id":"dev-1","event_id":"ev-1","entries":[]}`,
		nil,
	)
	err := server.PostSyncBatch(echo.New().NewContext(req, rec))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestDomainError_check_in_statuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid signature", entity.ErrInvalidSignature, http.StatusUnauthorized},
		{"event mismatch", entity.ErrEventMismatch, http.StatusForbidden},
		{"void ticket", entity.ErrTicketVoid, http.StatusConflict},
		{"invalid quantity", entity.ErrInvalidQuantity, http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *echo.HTTPError
			require.ErrorAs(t, domainError(tt.err), &httpErr)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}
