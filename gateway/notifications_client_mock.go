package gateway

import (
	"context"
	"sync"
)

type NotificationsMock struct {
	mock sync.Mutex

	Sent map[string]TicketsConfirmationNotification
}

func (c *NotificationsMock) SendTicketsConfirmation(ctx context.Context, notification TicketsConfirmationNotification) error {
	c.mock.Lock()
	defer c.mock.Unlock()
	if c.Sent == nil {
		c.Sent = make(map[string]TicketsConfirmationNotification)
	}

	c.Sent[notification.IdempotencyKey] = notification

	return nil
}
