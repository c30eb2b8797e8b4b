package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/gateway"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
)

func (h Handler) SendTicketsConfirmationHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"SendTicketsConfirmationHandler",
		func(ctx context.Context, event *entity.ReservationCommitted_v1) error {
			log.FromContext(ctx).
				WithField("reservation_id", event.ReservationID).
				Info("Sending tickets confirmation")

			err := h.notificationsService.SendTicketsConfirmation(ctx, gateway.TicketsConfirmationNotification{
				OwnerEmail:     event.OwnerEmail,
				EventID:        event.EventID,
				ReservationID:  event.ReservationID,
				TicketIDs:      event.TicketIDs,
				IdempotencyKey: event.Header.IdempotencyKey,
			})
			if err != nil {
				return fmt.Errorf("failed to send tickets confirmation: %w", err)
			}

			return nil
		},
	)
}
