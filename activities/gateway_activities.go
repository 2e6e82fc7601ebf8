package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"freelance-checkout-system/gateway"
)

// GatewayActivities contains the payment-gateway activities.
type GatewayActivities struct {
	client *gateway.Client
	widget gateway.Widget
	apiKey string
}

// NewGatewayActivities creates a new GatewayActivities instance. The widget
// is injected so tests can swap in a fake; apiKey is the public gateway key
// handed to the checkout widget.
func NewGatewayActivities(client *gateway.Client, widget gateway.Widget, apiKey string) *GatewayActivities {
	return &GatewayActivities{
		client: client,
		widget: widget,
		apiKey: apiKey,
	}
}

// CreateGatewayOrder requests a gateway order id for the display-currency
// amount. Nothing is charged if this fails.
func (g *GatewayActivities) CreateGatewayOrder(ctx context.Context, req gateway.CreateOrderRequest) (gateway.Order, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating gateway order", "amount", req.Amount, "currency", string(req.Currency), "plan", req.PlanType)

	activity.RecordHeartbeat(ctx, "calling create-order endpoint")

	order, err := g.client.CreateOrder(ctx, req)
	if err != nil {
		return gateway.Order{}, err
	}

	logger.Info("Gateway order created", "gateway_order_id", order.ID, "amount", order.Amount)
	return order, nil
}

// OpenCheckoutWidget loads the gateway's client script (once per process)
// and opens the checkout modal for the given order. A script load failure
// aborts the checkout before the modal ever opens.
func (g *GatewayActivities) OpenCheckoutWidget(ctx context.Context, opts gateway.CheckoutOptions) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Opening gateway checkout", "gateway_order_id", opts.OrderID)

	if opts.Key == "" {
		opts.Key = g.apiKey
	}

	client, err := g.widget.LoadOnce(ctx)
	if err != nil {
		return err
	}

	if err := client.Open(ctx, opts); err != nil {
		return err
	}

	logger.Info("Gateway checkout opened", "gateway_order_id", opts.OrderID)
	return nil
}
