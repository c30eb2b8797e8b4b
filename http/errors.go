package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

// domainError translates typed domain failures into HTTP responses. Errors
// it does not recognize bubble up to echo's default handler as a 500.
func domainError(err error) error {
	var limitErr entity.LimitExceededError
	if errors.As(err, &limitErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
			"message":         "purchase limit exceeded",
			"effective_limit": limitErr.EffectiveLimit,
			"requested":       limitErr.Requested,
			"in_cart":         limitErr.InCart,
		})
	}

	var usedErr entity.AlreadyUsedError
	if errors.As(err, &usedErr) {
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"message":       "ticket already used",
			"checked_in_at": usedErr.Record.CheckedInAt,
			"scanner_id":    usedErr.Record.ScannerID,
			"source":        usedErr.Record.Source,
		})
	}

	switch {
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrTicketTypeNotFound),
		errors.Is(err, entity.ErrReservationNotFound),
		errors.Is(err, entity.ErrTicketNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, entity.ErrInsufficientInventory):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, entity.ErrReservationExpired),
		errors.Is(err, entity.ErrAlreadyFinalized),
		errors.Is(err, entity.ErrReversalWindowExpired):
		return echo.NewHTTPError(http.StatusGone, err.Error())

	case errors.Is(err, entity.ErrPaymentDeclined):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())

	case errors.Is(err, entity.ErrInvalidQuantity):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, entity.ErrInvalidSignature):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())

	case errors.Is(err, entity.ErrEventMismatch):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, entity.ErrTicketVoid),
		errors.Is(err, entity.ErrTicketExpired):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	return err
}
