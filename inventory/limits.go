package inventory

import (
	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

// CartContext holds the quantities already present in the caller's cart,
// keyed by ticket type ID. Limits aggregate across cart lines of the same
// type; they do not accumulate across a customer's past purchases.
type CartContext map[string]int

// ValidateQuantity applies the purchase limit rules in order; the first
// violation wins. Availability is checked last so a request that breaks a
// policy limit reports the limit, not the stock level.
func ValidateQuantity(tt entity.TicketType, eventLimit *int, requested int, cart CartContext) error {
	if requested < 1 {
		return entity.ErrInvalidQuantity
	}

	limit, limited := effectiveLimit(tt.PerTransactionLimit, eventLimit)

	if limited && requested+cart[tt.ID] > limit {
		return entity.LimitExceededError{
			EffectiveLimit: limit,
			Requested:      requested,
			InCart:         cart[tt.ID],
		}
	}

	if requested > tt.Available() {
		return entity.ErrInsufficientInventory
	}

	return nil
}

// effectiveLimit combines the per-type and event-wide caps; an absent limit
// means unlimited for that rule only.
func effectiveLimit(perType, eventWide *int) (int, bool) {
	switch {
	case perType == nil && eventWide == nil:
		return 0, false
	case perType == nil:
		return *eventWide, true
	case eventWide == nil:
		return *perType, true
	case *eventWide < *perType:
		return *eventWide, true
	default:
		return *perType, true
	}
}
