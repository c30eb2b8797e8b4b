package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

type postEventRequest struct {
	Name             string     `json:"name"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	TransactionLimit *int       `json:"transaction_limit,omitempty"`
}

type postTicketTypeRequest struct {
	Name                string `json:"name"`
	Capacity            int    `json:"capacity"`
	PerTransactionLimit *int   `json:"per_transaction_limit,omitempty"`
	PriceCents          int64  `json:"price_cents"`
	PriceCurrency       string `json:"price_currency"`
}

func (s Server) PostEvents(c echo.Context) error {
	var request postEventRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	event, err := s.ledger.CreateEvent(c.Request().Context(), entity.Event{
		Name:             request.Name,
		StartsAt:         request.StartsAt,
		EndsAt:           request.EndsAt,
		TransactionLimit: request.TransactionLimit,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, event)
}

func (s Server) PostTicketTypes(c echo.Context) error {
	var request postTicketTypeRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	tt, err := s.ledger.CreateTicketType(c.Request().Context(), entity.TicketType{
		EventID:             c.Param("event_id"),
		Name:                request.Name,
		Capacity:            request.Capacity,
		PerTransactionLimit: request.PerTransactionLimit,
		PriceCents:          request.PriceCents,
		PriceCurrency:       request.PriceCurrency,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, tt)
}

func (s Server) GetAttendance(c echo.Context) error {
	stats, err := s.attendance.Stats(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return fmt.Errorf("failed to get attendance stats: %w", err)
	}

	return c.JSON(http.StatusOK, stats)
}

func (s Server) GetEventTickets(c echo.Context) error {
	tickets, err := s.ticketsRepo.FindByEvent(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, tickets)
}
