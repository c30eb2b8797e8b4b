package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

type postCheckInRequest struct {
	CredentialToken string    `json:"credential_token"`
	ScannerID       string    `json:"scanner_id"`
	EventID         string    `json:"event_id"`
	At              time.Time `json:"at,omitempty"`
}

type postSyncBatchRequest struct {
	DeviceID            string                `json:"device_id"`
	EventID             string                `json:"event_id"`
	BatchIdempotencyKey string                `json:"batch_idempotency_key"`
	Entries             []entity.OfflineEntry `json:"entries"`
}

type postSyncBatchResponse struct {
	Results []entity.SyncResult `json:"results"`
}

func (s Server) PostCheckIn(c echo.Context) error {
	var request postCheckInRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.CredentialToken == "" || request.EventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "credential_token and event_id are required")
	}

	// a zero timestamp means the scanner did not report one; the state
	// machine falls back to the server clock
	record, err := s.checkIns.CheckIn(
		c.Request().Context(),
		request.CredentialToken,
		request.ScannerID,
		request.EventID,
		request.At,
	)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, record)
}

func (s Server) DeleteCheckIn(c echo.Context) error {
	err := s.checkIns.Reverse(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		return domainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s Server) PostSyncBatch(c echo.Context) error {
	var request postSyncBatchRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	// the key may also ride the Idempotency-Key header
	batchKey := request.BatchIdempotencyKey
	if batchKey == "" {
		batchKey = c.Request().Header.Get("Idempotency-Key")
	}
	if batchKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "batch_idempotency_key is required")
	}

	if request.EventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id is required")
	}

	results, err := s.reconciler.SyncBatch(
		c.Request().Context(),
		batchKey,
		request.DeviceID,
		request.EventID,
		request.Entries,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, postSyncBatchResponse{Results: results})
}
