// Package gateway talks to the payment gateway: server-side order creation
// and the client-side checkout widget capability.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"freelance-checkout-system/models"
)

// CreateOrderRequest is the body of the order-creation call. Amount is in
// the display currency; the server converts to the gateway's settlement
// currency.
type CreateOrderRequest struct {
	Amount   float64         `json:"amount"`
	PlanType string          `json:"planType"`
	UserID   string          `json:"userId"`
	Currency models.Currency `json:"currency"`
}

// Order is the gateway-side order handle. Amount is in minor units.
type Order struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency models.Currency `json:"currency"`
}

type createOrderResponse struct {
	Order Order  `json:"order"`
	Error string `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateOrder asks the server for a gateway order id and canonical amount.
// Nothing is charged if this fails.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return Order{}, fmt.Errorf("failed to marshal create-order request: %w", err)
	}

	url := c.baseURL + "/api/payments/create-order"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Order{}, fmt.Errorf("failed to create create-order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Order{}, fmt.Errorf("failed to call create-order endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed createOrderResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error
		if msg == "" {
			msg = string(raw)
		}
		return Order{}, fmt.Errorf("create-order returned status %d: %s", resp.StatusCode, msg)
	}

	if parsed.Order.ID == "" {
		return Order{}, fmt.Errorf("create-order returned no order id")
	}
	return parsed.Order, nil
}
