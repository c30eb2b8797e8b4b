package gateway

import (
	"context"
	"sync"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/inventory"
)

type capturedPayment struct {
	ReservationID string
	AmountCents   int64
	Currency      string
}

type PaymentMock struct {
	mock sync.Mutex

	Decline  bool
	Captured map[string]capturedPayment
}

func (c *PaymentMock) Confirm(ctx context.Context, reservationID string, amountCents int64, currency string) (inventory.PaymentConfirmation, error) {
	c.mock.Lock()
	defer c.mock.Unlock()
	if c.Captured == nil {
		c.Captured = make(map[string]capturedPayment)
	}

	if c.Decline {
		return inventory.PaymentConfirmation{Approved: false}, nil
	}

	c.Captured[reservationID] = capturedPayment{
		ReservationID: reservationID,
		AmountCents:   amountCents,
		Currency:      currency,
	}

	return inventory.PaymentConfirmation{
		Approved:  true,
		Reference: "mocked-payment-reference",
	}, nil
}
