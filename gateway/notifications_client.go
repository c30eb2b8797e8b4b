package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type TicketsConfirmationNotification struct {
	OwnerEmail     string   `json:"owner_email"`
	EventID        string   `json:"event_id"`
	ReservationID  string   `json:"reservation_id"`
	TicketIDs      []string `json:"ticket_ids"`
	IdempotencyKey string   `json:"idempotency_key"`
}

// NotificationsClient delivers purchase confirmations through the mailing
// service. The idempotency key deduplicates redelivered events.
type NotificationsClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewNotificationsClient(baseURL string) NotificationsClient {
	return NotificationsClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

func (c NotificationsClient) SendTicketsConfirmation(ctx context.Context, notification TicketsConfirmationNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications/tickets-confirmation", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code for POST /notifications/tickets-confirmation: %d", resp.StatusCode)
	}

	return nil
}
