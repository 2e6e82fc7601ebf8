package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"

	"freelance-checkout-system/events"
	"freelance-checkout-system/metrics"
	"freelance-checkout-system/models"
	"freelance-checkout-system/workflows"
)

// OrderStore is the persistence surface the handlers need.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// WorkflowSignaler delivers gateway callbacks into running workflows.
// Satisfied by the Temporal client.
type WorkflowSignaler interface {
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
}

type API struct {
	store         OrderStore
	signaler      WorkflowSignaler
	orderWriter   *kafkaGo.Writer // nil when kafka is disabled
	metrics       *metrics.ServerMetrics
	uploadDir     string
	publicBaseURL string
	logWarn       func(format string, v ...any)
}

type createOrderRequest struct {
	Amount   float64 `json:"amount"`
	PlanType string  `json:"planType"`
	UserID   string  `json:"userId"`
	Currency string  `json:"currency"`
}

type gatewayOrderDTO struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// POST /api/payments/create-order
func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Amount <= 0 {
		a.respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	currency := strings.ToUpper(req.Currency)
	if currency != string(models.CurrencyINR) && currency != string(models.CurrencyUSD) {
		a.respondError(w, http.StatusBadRequest, "unsupported currency")
		return
	}

	// Gateway orders carry amounts in minor units (paise / cents).
	order := gatewayOrderDTO{
		ID:       newGatewayOrderID(),
		Amount:   int64(math.Round(req.Amount * 100)),
		Currency: currency,
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"order": order})
}

func newGatewayOrderID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "order_" + raw[:14]
}

// POST /api/orders
func (a *API) persistOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid order payload")
		return
	}

	if order.GatewayPaymentID == "" || order.GatewayOrderID == "" {
		a.respondError(w, http.StatusBadRequest, "gateway ids are required")
		return
	}
	if order.ContactEmail == "" {
		a.respondError(w, http.StatusBadRequest, "contact email is required")
		return
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := a.store.CreateOrder(ctx, &order); err != nil {
		a.countOrder("error")
		a.respondError(w, http.StatusInternalServerError, "failed to record order")
		return
	}
	a.countOrder(order.Status.String())

	a.publishOrderCompleted(ctx, order)

	a.respondJSON(w, http.StatusOK, map[string]any{
		"id":     order.ID,
		"status": order.Status,
	})
}

func (a *API) publishOrderCompleted(ctx context.Context, order models.Order) {
	if a.orderWriter == nil {
		return
	}
	event := events.OrderCompletedEvent{
		OrderID:          order.ID,
		ServiceTitle:     order.ServiceTitle,
		Quantity:         order.Quantity,
		TotalBase:        order.TotalBase,
		TotalDisplay:     order.TotalDisplay,
		Currency:         order.Currency,
		GatewayPaymentID: order.GatewayPaymentID,
		Status:           order.Status.String(),
		OccurredAt:       time.Now().UTC(),
	}
	if err := events.PublishJSON(ctx, a.orderWriter, order.ID, event); err != nil {
		// The order is already recorded; losing the event is a warning, not
		// a request failure.
		a.logWarn("failed to publish order event for %s: %v", order.ID, err)
	}
}

// GET /api/orders/{id}
func (a *API) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := a.store.GetOrder(ctx, id)
	if err != nil {
		a.respondError(w, http.StatusNotFound, "order not found")
		return
	}
	a.respondJSON(w, http.StatusOK, order)
}

const maxUploadMemory = 8 << 20

// POST /api/uploadServiceRs and /api/uploadDocuments
func (a *API) upload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			a.respondError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			a.respondError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], filepath.Base(header.Filename))
		dst, err := os.Create(filepath.Join(a.uploadDir, name))
		if err != nil {
			a.respondError(w, http.StatusInternalServerError, "failed to store file")
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			a.respondError(w, http.StatusInternalServerError, "failed to store file")
			return
		}

		if a.metrics != nil {
			a.metrics.UploadsTotal.WithLabelValues(kind).Inc()
		}

		a.respondJSON(w, http.StatusOK, map[string]string{
			"url": a.publicBaseURL + "/uploads/" + name,
		})
	}
}

type webhookRequest struct {
	CheckoutID    string `json:"checkout_id"`
	PaymentID     string `json:"razorpay_payment_id"`
	OrderID       string `json:"razorpay_order_id"`
	PaymentMethod string `json:"razorpay_payment_method"`
}

// POST /api/payments/webhook
// The gateway's success callback re-enters application state here; it is
// forwarded to the waiting payment workflow as a signal.
func (a *API) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid webhook body")
		return
	}
	if req.CheckoutID == "" || req.PaymentID == "" {
		a.respondError(w, http.StatusBadRequest, "checkout_id and razorpay_payment_id are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := a.signaler.SignalWorkflow(ctx,
		workflows.GatewayPaymentWorkflowID(req.CheckoutID), "",
		workflows.SignalPaymentCompleted,
		models.PaymentResult{
			PaymentID:     req.PaymentID,
			OrderID:       req.OrderID,
			PaymentMethod: req.PaymentMethod,
		})
	if err != nil {
		a.respondError(w, http.StatusBadGateway, "failed to deliver payment signal")
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) countOrder(status string) {
	if a.metrics != nil {
		a.metrics.OrdersTotal.WithLabelValues(status).Inc()
	}
}

func (a *API) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logWarn("failed to encode response: %v", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, message string) {
	a.respondJSON(w, status, map[string]string{"error": message})
}

// instrument records request counts and latency per handler.
func (a *API) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.metrics == nil {
			next(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		a.metrics.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		a.metrics.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
