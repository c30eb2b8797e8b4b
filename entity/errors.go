package entity

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrTicketTypeNotFound    = errors.New("ticket type not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrLimitExceeded         = errors.New("purchase limit exceeded")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationExpired    = errors.New("reservation expired")
	ErrAlreadyFinalized      = errors.New("reservation already finalized")
	ErrPaymentDeclined       = errors.New("payment declined")
	ErrInvalidSignature      = errors.New("invalid credential signature")
	ErrEventMismatch         = errors.New("credential was issued for another event")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrAlreadyUsed           = errors.New("ticket already used")
	ErrTicketVoid            = errors.New("ticket voided")
	ErrTicketExpired         = errors.New("ticket expired")
	ErrReversalWindowExpired = errors.New("check-in reversal window expired")
)

// LimitExceededError carries the effective limit so the purchase UI can tell
// the customer how many tickets they may still buy.
type LimitExceededError struct {
	EffectiveLimit int
	Requested      int
	InCart         int
}

func (e LimitExceededError) Error() string {
	return fmt.Sprintf(
		"purchase limit exceeded: limit is %d, cart holds %d, %d more requested",
		e.EffectiveLimit, e.InCart, e.Requested,
	)
}

func (e LimitExceededError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// AlreadyUsedError carries the prior check-in record so the gate can display
// who entered, when and where.
type AlreadyUsedError struct {
	Record CheckInRecord
}

func (e AlreadyUsedError) Error() string {
	return fmt.Sprintf(
		"ticket %s already used at %s by scanner %s",
		e.Record.TicketID, e.Record.CheckedInAt.Format("15:04:05"), e.Record.ScannerID,
	)
}

func (e AlreadyUsedError) Is(target error) bool {
	return target == ErrAlreadyUsed
}
