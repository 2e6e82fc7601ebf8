package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// CheckoutScriptURL is the gateway's fixed CDN URL for the checkout widget.
const CheckoutScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// Prefill carries the contact details shown pre-filled in the widget.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutOptions mirrors the constructor options of the gateway widget.
type CheckoutOptions struct {
	Key      string  `json:"key"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"order_id"`
	Prefill  Prefill `json:"prefill"`
	Theme    string  `json:"theme"`
}

// CheckoutClient is the loaded widget. Open presents the payment modal for
// the given order; the gateway callback arrives out-of-band as a
// payment-completed signal, not through this interface.
type CheckoutClient interface {
	Open(ctx context.Context, opts CheckoutOptions) error
}

// Widget loads the gateway's client script. LoadOnce must be cheap on every
// call after the first successful load, and a load failure must abort the
// checkout before the modal step.
type Widget interface {
	LoadOnce(ctx context.Context) (CheckoutClient, error)
}

// ScriptWidget fetches the checkout script from the CDN exactly once per
// process, matching the single script-tag injection of the web client.
type ScriptWidget struct {
	scriptURL  string
	httpClient *http.Client

	once   sync.Once
	client CheckoutClient
	err    error
}

func NewScriptWidget(scriptURL string) *ScriptWidget {
	if scriptURL == "" {
		scriptURL = CheckoutScriptURL
	}
	return &ScriptWidget{
		scriptURL: scriptURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (w *ScriptWidget) LoadOnce(ctx context.Context) (CheckoutClient, error) {
	w.once.Do(func() {
		w.client, w.err = w.load(ctx)
	})
	if w.err != nil {
		return nil, w.err
	}
	return w.client, nil
}

func (w *ScriptWidget) load(ctx context.Context) (CheckoutClient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.scriptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create script request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway script: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway script returned status %d", resp.StatusCode)
	}

	return &scriptClient{}, nil
}

type scriptClient struct{}

func (c *scriptClient) Open(ctx context.Context, opts CheckoutOptions) error {
	if opts.Key == "" {
		return fmt.Errorf("gateway key is not configured")
	}
	if opts.OrderID == "" {
		return fmt.Errorf("gateway order id is required to open checkout")
	}
	// The modal itself runs in the user's browser session. Opening here
	// hands the options over; completion arrives via the webhook signal.
	return nil
}
