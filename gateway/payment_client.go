package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/inventory"
)

// PaymentClient talks to the payment provider's capture endpoint. Capture is
// keyed by the reservation ID on the provider side, so retrying a commit does
// not double-charge.
type PaymentClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewPaymentClient(baseURL string) PaymentClient {
	return PaymentClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

type capturePaymentRequest struct {
	ReservationID string `json:"reservation_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

type capturePaymentResponse struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference"`
}

func (c PaymentClient) Confirm(ctx context.Context, reservationID string, amountCents int64, currency string) (inventory.PaymentConfirmation, error) {
	body, err := json.Marshal(capturePaymentRequest{
		ReservationID: reservationID,
		AmountCents:   amountCents,
		Currency:      currency,
	})
	if err != nil {
		return inventory.PaymentConfirmation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/capture", bytes.NewReader(body))
	if err != nil {
		return inventory.PaymentConfirmation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return inventory.PaymentConfirmation{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var payload capturePaymentResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return inventory.PaymentConfirmation{}, fmt.Errorf("could not decode payment response: %w", err)
		}
		return inventory.PaymentConfirmation{
			Approved:  payload.Approved,
			Reference: payload.Reference,
		}, nil
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		return inventory.PaymentConfirmation{Approved: false}, nil
	default:
		return inventory.PaymentConfirmation{}, fmt.Errorf("unexpected status code for POST /payments/capture: %d", resp.StatusCode)
	}
}
