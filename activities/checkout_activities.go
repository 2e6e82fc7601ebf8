package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.temporal.io/sdk/activity"

	"freelance-checkout-system/models"
	"freelance-checkout-system/uploads"
)

// CheckoutActivities contains the upload, persistence and notification
// activities of the checkout pipeline.
type CheckoutActivities struct {
	uploader      *uploads.Client
	httpClient    *http.Client
	ordersBaseURL string
}

// NewCheckoutActivities creates a new CheckoutActivities instance.
func NewCheckoutActivities(uploadBaseURL, ordersBaseURL string) *CheckoutActivities {
	return &CheckoutActivities{
		uploader: uploads.New(uploadBaseURL),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		ordersBaseURL: ordersBaseURL,
	}
}

// UploadAttachment uploads a single file and returns its stored URL.
// Uploads run one at a time; the workflow stops the sequence on the first
// failure so nothing after the failure point is attempted.
func (a *CheckoutActivities) UploadAttachment(ctx context.Context, file models.FileRef, kind uploads.Kind) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Uploading attachment", "file", file.Name, "kind", string(kind), "size", file.Size)

	activity.RecordHeartbeat(ctx, fmt.Sprintf("uploading %s", file.Name))

	url, err := a.uploader.Upload(ctx, file, kind)
	if err != nil {
		return "", err
	}

	logger.Info("Attachment uploaded", "file", file.Name, "url", url)
	return url, nil
}

type persistResponse struct {
	ID     string             `json:"id"`
	Status models.OrderStatus `json:"status"`
	Error  string             `json:"error"`
}

// PersistOrder records the finalized order. The workflow treats this as the
// final, non-retractable step: it is never retried automatically because the
// payment is already captured and a blind retry risks duplicate orders.
func (a *CheckoutActivities) PersistOrder(ctx context.Context, order models.Order) (models.Order, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Persisting order", "service", order.ServiceTitle, "gateway_payment_id", order.GatewayPaymentID)

	jsonData, err := json.Marshal(order)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to marshal order: %w", err)
	}

	url := fmt.Sprintf("%s/api/orders", a.ordersBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to create orders request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	activity.RecordHeartbeat(ctx, "calling orders endpoint")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to call orders endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed persistResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := parsed.Error
		if msg == "" {
			msg = string(raw)
		}
		return models.Order{}, fmt.Errorf("orders endpoint returned status %d: %s", resp.StatusCode, msg)
	}

	order.ID = parsed.ID
	if parsed.Status != "" {
		order.Status = parsed.Status
	}

	logger.Info("Order persisted", "order_id", order.ID, "status", order.Status.String())
	return order, nil
}

// NotifyCustomer sends a notification to the customer. Failures here never
// fail the checkout.
func (a *CheckoutActivities) NotifyCustomer(ctx context.Context, order models.Order, message string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Notifying customer", "email", order.ContactEmail, "message", message)

	select {
	case <-time.After(200 * time.Millisecond):
		// Notification sent
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.Info("Customer notified", "email", order.ContactEmail)
	return nil
}
