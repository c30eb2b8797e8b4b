package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/inventory"
)

type postReservationRequest struct {
	EventID      string         `json:"event_id"`
	TicketTypeID string         `json:"ticket_type_id"`
	Quantity     int            `json:"quantity"`
	Cart         map[string]int `json:"cart,omitempty"`
}

type postReservationResponse struct {
	ReservationID string    `json:"reservation_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type postCommitRequest struct {
	OwnerEmail string `json:"owner_email"`
}

func (s Server) PostReservations(c echo.Context) error {
	var request postReservationRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.TicketTypeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ticket_type_id is required")
	}

	reservation, err := s.ledger.Reserve(c.Request().Context(), inventory.ReserveInput{
		EventID:      request.EventID,
		TicketTypeID: request.TicketTypeID,
		Quantity:     request.Quantity,
		Cart:         request.Cart,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, postReservationResponse{
		ReservationID: reservation.ID,
		ExpiresAt:     reservation.ExpiresAt,
	})
}

func (s Server) PostReservationCommit(c echo.Context) error {
	var request postCommitRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.OwnerEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "owner_email is required")
	}

	tickets, err := s.ledger.Commit(c.Request().Context(), inventory.CommitInput{
		ReservationID: c.Param("reservation_id"),
		OwnerEmail:    request.OwnerEmail,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, tickets)
}

func (s Server) DeleteReservation(c echo.Context) error {
	err := s.ledger.Release(c.Request().Context(), c.Param("reservation_id"))
	if err != nil {
		return domainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
