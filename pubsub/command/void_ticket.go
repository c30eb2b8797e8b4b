package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/log"
)

func (h Handler) VoidTicketHandler() cqrs.CommandHandler {
	return cqrs.NewCommandHandler(
		"VoidTicketHandler",
		func(ctx context.Context, command *entity.VoidTicket) error {
			err := h.checkInsRepo.Void(ctx, command.TicketID, command.Reason)
			if errors.Is(err, entity.ErrAlreadyUsed) {
				// Retrying cannot change the outcome, so ack the command and
				// leave the decision to the operator.
				log.FromContext(ctx).
					WithField("ticket_id", command.TicketID).
					Warn("Cannot void a ticket that was already used")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to void ticket: %w", err)
			}

			return nil
		},
	)
}
