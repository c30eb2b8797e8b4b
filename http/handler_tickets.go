package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/credential"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

type credentialResponse struct {
	TicketID string `json:"ticket_id"`
	Token    string `json:"token"`
}

type postVoidRequest struct {
	Reason string `json:"reason"`
}

func (s Server) GetTicket(c echo.Context) error {
	ticket, err := s.ticketsRepo.Get(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, ticket)
}

func (s Server) GetTicketCredential(c echo.Context) error {
	ticket, err := s.ticketsRepo.Get(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, credentialResponse{
		TicketID: ticket.ID,
		Token:    ticket.CredentialToken,
	})
}

func (s Server) GetTicketCredentialPNG(c echo.Context) error {
	ticket, err := s.ticketsRepo.Get(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		return domainError(err)
	}

	png, err := credential.QRPNG(ticket.CredentialToken, 0)
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

func (s Server) PostVoidTicket(c echo.Context) error {
	var request postVoidRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	err := s.commandBus.Send(c.Request().Context(), &entity.VoidTicket{
		Header:   entity.NewEventHeaderWithIdempotencyKey(uuid.NewString()),
		TicketID: c.Param("ticket_id"),
		Reason:   request.Reason,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusAccepted)
}
