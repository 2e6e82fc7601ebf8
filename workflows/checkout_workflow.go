package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"freelance-checkout-system/activities"
	"freelance-checkout-system/checkout"
	"freelance-checkout-system/gateway"
	"freelance-checkout-system/models"
	"freelance-checkout-system/uploads"
)

const (
	SignalPaymentCompleted = "payment-completed"
	SignalAbandon          = "abandon"
	QueryState             = "state"
)

// CheckoutInput is the submitted form plus the service it was opened for.
type CheckoutInput struct {
	CheckoutID string              `json:"checkout_id"`
	Service    models.Service      `json:"service"`
	Form       models.CheckoutForm `json:"form"`
	UserID     string              `json:"user_id"`
}

// CheckoutWorkflow runs the submit pipeline: validate, upload attachments
// one at a time, run the gateway payment leg, persist the order. No step is
// retried automatically; a failed run surfaces its error and the next
// attempt is a fresh user-initiated submission starting from scratch.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutInput) (models.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", "checkout_id", input.CheckoutID, "service", input.Service.Title)

	state := models.CheckoutState{
		CheckoutID:  input.CheckoutID,
		Phase:       checkout.StateValidating.String(),
		LastUpdated: workflow.Now(ctx),
	}

	err := workflow.SetQueryHandler(ctx, QueryState, func() (models.CheckoutState, error) {
		return state, nil
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to set query handler: %w", err)
	}

	// The user closing the form before the gateway leg abandons the run.
	abandoned := false
	abandonChan := workflow.GetSignalChannel(ctx, SignalAbandon)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		abandonChan.Receive(gCtx, nil)
		abandoned = true
		logger.Info("Checkout abandoned via signal", "checkout_id", input.CheckoutID)
	})

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.CheckoutActivities

	// Step 1: Validate. Runs before any network call, so a missing required
	// file fails the submission with nothing uploaded.
	if verr := checkout.Validate(input.Service, input.Form); verr != nil {
		logger.Info("Checkout validation failed", "checkout_id", input.CheckoutID, "field", verr.Field)
		state.Error = verr.Message
		state.LastUpdated = workflow.Now(ctx)
		return models.Order{}, fmt.Errorf("validation failed: %w", verr)
	}

	// Step 2: Upload attachments sequentially, fail-fast. A failure midway
	// leaves a deterministic boundary of what succeeded; nothing uploaded
	// after the failure point is retried, the next submission re-uploads all.
	state.Phase = checkout.StateUploading.String()
	state.LastUpdated = workflow.Now(ctx)

	var resumeURL string
	var documentURLs []string

	if input.Service.RequiresResume {
		err = workflow.ExecuteActivity(ctx, act.UploadAttachment, *input.Form.Resume, uploads.KindResume).Get(ctx, &resumeURL)
		if err != nil {
			logger.Error("Resume upload failed", "checkout_id", input.CheckoutID, "error", err)
			state.Error = err.Error()
			state.LastUpdated = workflow.Now(ctx)
			return models.Order{}, fmt.Errorf("upload failed: %w", err)
		}
		state.UploadedURLs = append(state.UploadedURLs, resumeURL)
		state.LastUpdated = workflow.Now(ctx)
	}

	if input.Service.RequiresDocuments {
		for _, doc := range input.Form.Documents {
			var url string
			err = workflow.ExecuteActivity(ctx, act.UploadAttachment, doc, uploads.KindDocument).Get(ctx, &url)
			if err != nil {
				logger.Error("Document upload failed", "checkout_id", input.CheckoutID, "file", doc.Name, "error", err)
				state.Error = err.Error()
				state.LastUpdated = workflow.Now(ctx)
				return models.Order{}, fmt.Errorf("upload failed: %w", err)
			}
			documentURLs = append(documentURLs, url)
			state.UploadedURLs = append(state.UploadedURLs, url)
			state.LastUpdated = workflow.Now(ctx)
		}
	}

	if abandoned {
		logger.Info("Checkout abandoned after uploads", "checkout_id", input.CheckoutID)
		return models.Order{}, fmt.Errorf("checkout abandoned")
	}

	// Step 3: Gateway payment leg (child workflow): create the gateway
	// order, open the widget, wait for the payment-completed callback.
	state.Phase = checkout.StateCreatingGatewayOrder.String()
	state.LastUpdated = workflow.Now(ctx)

	childWorkflowOptions := workflow.ChildWorkflowOptions{
		WorkflowID:               GatewayPaymentWorkflowID(input.CheckoutID),
		WorkflowExecutionTimeout: 30 * time.Minute,
	}
	childCtx := workflow.WithChildOptions(ctx, childWorkflowOptions)

	legInput := GatewayLegInput{
		CheckoutID: input.CheckoutID,
		Amount:     input.Form.Total(),
		Currency:   input.Form.SelectedCurrency,
		PlanType:   input.Service.Title,
		UserID:     input.UserID,
		Prefill: gateway.Prefill{
			Name:    input.Form.ContactName,
			Email:   input.Form.ContactEmail,
			Contact: input.Form.ContactPhone,
		},
	}

	var leg GatewayLegResult
	err = workflow.ExecuteChildWorkflow(childCtx, GatewayPaymentWorkflow, legInput).Get(ctx, &leg)
	if err != nil {
		logger.Error("Gateway payment leg failed", "checkout_id", input.CheckoutID, "error", err)
		state.Error = err.Error()
		state.LastUpdated = workflow.Now(ctx)
		return models.Order{}, fmt.Errorf("payment failed: %w", err)
	}

	state.Phase = checkout.StatePersisting.String()
	state.GatewayOrderID = leg.GatewayOrderID
	state.GatewayPaymentID = leg.PaymentID
	state.LastUpdated = workflow.Now(ctx)

	// Step 4: Persist the finalized order with status Pending.
	order := models.Order{
		ContactName:      input.Form.ContactName,
		ContactEmail:     input.Form.ContactEmail,
		ContactPhone:     input.Form.ContactPhone,
		Requirements:     input.Form.Requirements,
		ServiceTitle:     input.Service.Title,
		Quantity:         input.Form.Quantity,
		UnitPriceBase:    input.Form.UnitPriceBase,
		UnitPriceDisplay: input.Form.UnitPriceDisplay,
		Currency:         input.Form.SelectedCurrency,
		TotalBase:        input.Form.UnitPriceBase * float64(input.Form.Quantity),
		TotalDisplay:     input.Form.Total(),
		ResumeURL:        resumeURL,
		DocumentURLs:     documentURLs,
		GatewayOrderID:   leg.GatewayOrderID,
		GatewayPaymentID: leg.PaymentID,
		Status:           models.OrderStatusPending,
		UserID:           input.UserID,
		CreatedAt:        workflow.Now(ctx),
		UpdatedAt:        workflow.Now(ctx),
	}

	var persisted models.Order
	err = workflow.ExecuteActivity(ctx, act.PersistOrder, order).Get(ctx, &persisted)
	if err != nil {
		// The payment is captured but the order is not recorded. This is a
		// reportable inconsistency, not a retryable failure: a blind retry
		// risks duplicate orders.
		logger.Error("Order persistence failed after captured payment",
			"checkout_id", input.CheckoutID, "gateway_payment_id", leg.PaymentID, "error", err)
		state.Error = err.Error()
		state.LastUpdated = workflow.Now(ctx)

		_ = workflow.ExecuteActivity(ctx, act.NotifyCustomer, order,
			"Your payment was received but the order could not be recorded. Please contact support with payment id "+leg.PaymentID).Get(ctx, nil)

		return models.Order{}, fmt.Errorf("payment captured but order not recorded, contact support with payment id %s: %w", leg.PaymentID, err)
	}

	state.Phase = checkout.StateDone.String()
	state.OrderID = persisted.ID
	state.LastUpdated = workflow.Now(ctx)

	// Step 5: Notify. Non-fatal, the order is already recorded.
	err = workflow.ExecuteActivity(ctx, act.NotifyCustomer, persisted,
		"Your order has been placed successfully").Get(ctx, nil)
	if err != nil {
		logger.Warn("Failed to notify customer", "checkout_id", input.CheckoutID, "error", err)
	}

	logger.Info("CheckoutWorkflow completed", "checkout_id", input.CheckoutID, "order_id", persisted.ID)
	return persisted, nil
}
