package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"freelance-checkout-system/activities"
	"freelance-checkout-system/gateway"
	"freelance-checkout-system/models"
)

const (
	GatewayPaymentWorkflowName = "GatewayPaymentWorkflow"
)

// GatewayPaymentWorkflowID derives the child workflow id the payment webhook
// signals.
func GatewayPaymentWorkflowID(checkoutID string) string {
	return fmt.Sprintf("gateway-payment-%s", checkoutID)
}

// GatewayLegInput describes the payment to collect. Amount is in the
// display currency; the create-order endpoint converts it server-side.
type GatewayLegInput struct {
	CheckoutID string          `json:"checkout_id"`
	Amount     float64         `json:"amount"`
	Currency   models.Currency `json:"currency"`
	PlanType   string          `json:"plan_type"`
	UserID     string          `json:"user_id"`
	Prefill    gateway.Prefill `json:"prefill"`
}

// GatewayLegResult carries the gateway identifiers back to the parent.
type GatewayLegResult struct {
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	PaymentMethod  string `json:"payment_method,omitempty"`
}

// GatewayPaymentWorkflow is a child workflow owning the gateway leg:
// create a gateway order, open the checkout widget, then wait for the
// gateway's out-of-band completion callback (delivered as a signal) or an
// abandon signal. Abandoning orphans the gateway-side order.
func GatewayPaymentWorkflow(ctx workflow.Context, input GatewayLegInput) (GatewayLegResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("GatewayPaymentWorkflow started", "checkout_id", input.CheckoutID, "amount", input.Amount, "currency", string(input.Currency))

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var gact *activities.GatewayActivities

	// Step 1: Create the gateway order. Nothing is charged if this fails.
	logger.Info("Creating gateway order", "checkout_id", input.CheckoutID)
	var order gateway.Order
	err := workflow.ExecuteActivity(ctx, gact.CreateGatewayOrder, gateway.CreateOrderRequest{
		Amount:   input.Amount,
		PlanType: input.PlanType,
		UserID:   input.UserID,
		Currency: input.Currency,
	}).Get(ctx, &order)
	if err != nil {
		logger.Error("Gateway order creation failed", "checkout_id", input.CheckoutID, "error", err)
		return GatewayLegResult{}, fmt.Errorf("gateway order creation failed: %w", err)
	}

	// Step 2: Open the checkout widget. The script loads once per process;
	// a load failure aborts before the modal opens.
	err = workflow.ExecuteActivity(ctx, gact.OpenCheckoutWidget, gateway.CheckoutOptions{
		Amount:   order.Amount,
		Currency: string(order.Currency),
		OrderID:  order.ID,
		Prefill:  input.Prefill,
		Theme:    "#0f172a",
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Gateway widget failed to open", "checkout_id", input.CheckoutID, "error", err)
		return GatewayLegResult{}, fmt.Errorf("gateway widget failed: %w", err)
	}

	// Step 3: Wait for the gateway callback. No timeout is enforced on the
	// payer; the run ends via the payment signal or an abandon signal.
	paymentChan := workflow.GetSignalChannel(ctx, SignalPaymentCompleted)
	abandonChan := workflow.GetSignalChannel(ctx, SignalAbandon)

	var payment models.PaymentResult
	abandoned := false

	selector := workflow.NewSelector(ctx)
	selector.AddReceive(paymentChan, func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, &payment)
	})
	selector.AddReceive(abandonChan, func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, nil)
		abandoned = true
	})
	selector.Select(ctx)

	if abandoned {
		logger.Info("Checkout abandoned while awaiting gateway", "checkout_id", input.CheckoutID, "gateway_order_id", order.ID)
		return GatewayLegResult{}, fmt.Errorf("checkout abandoned while awaiting payment")
	}

	if payment.PaymentID == "" {
		return GatewayLegResult{}, fmt.Errorf("gateway callback carried no payment id")
	}

	logger.Info("Payment completed", "checkout_id", input.CheckoutID, "payment_id", payment.PaymentID)
	return GatewayLegResult{
		GatewayOrderID: order.ID,
		PaymentID:      payment.PaymentID,
		PaymentMethod:  payment.PaymentMethod,
	}, nil
}
