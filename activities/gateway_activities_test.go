package activities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"freelance-checkout-system/gateway"
	"freelance-checkout-system/models"
)

// fakeWidget lets tests control the script-load outcome and capture the
// options the modal is opened with.
type fakeWidget struct {
	loadErr   bool
	openErr   bool
	loadCalls int
	opened    []gateway.CheckoutOptions
}

func (f *fakeWidget) LoadOnce(ctx context.Context) (gateway.CheckoutClient, error) {
	f.loadCalls++
	if f.loadErr {
		return nil, errors.New("script load failed")
	}
	return f, nil
}

func (f *fakeWidget) Open(ctx context.Context, opts gateway.CheckoutOptions) error {
	if f.openErr {
		return errors.New("modal dismissed")
	}
	f.opened = append(f.opened, opts)
	return nil
}

func TestCreateGatewayOrderActivity(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/create-order", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"order": map[string]any{"id": "order_abc123", "amount": 3612, "currency": "USD"},
		})
	}))
	defer mockServer.Close()

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	g := NewGatewayActivities(gateway.NewClient(mockServer.URL), &fakeWidget{}, "rzp_test_key")
	env.RegisterActivity(g.CreateGatewayOrder)

	val, err := env.ExecuteActivity(g.CreateGatewayOrder, gateway.CreateOrderRequest{
		Amount:   36.12,
		PlanType: "Web Development",
		Currency: models.CurrencyUSD,
	})
	require.NoError(t, err)

	var order gateway.Order
	require.NoError(t, val.Get(&order))
	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(3612), order.Amount)
}

func TestOpenCheckoutWidgetActivity(t *testing.T) {
	tests := []struct {
		name          string
		widget        *fakeWidget
		wantErr       bool
		errorContains string
	}{
		{
			name:   "Success - injects configured key",
			widget: &fakeWidget{},
		},
		{
			name:          "Failure - script load aborts before modal",
			widget:        &fakeWidget{loadErr: true},
			wantErr:       true,
			errorContains: "script load failed",
		},
		{
			name:          "Failure - modal dismissed",
			widget:        &fakeWidget{openErr: true},
			wantErr:       true,
			errorContains: "modal dismissed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			g := NewGatewayActivities(gateway.NewClient("http://localhost"), tt.widget, "rzp_test_key")
			env.RegisterActivity(g.OpenCheckoutWidget)

			_, err := env.ExecuteActivity(g.OpenCheckoutWidget, gateway.CheckoutOptions{
				Amount:   3612,
				Currency: "USD",
				OrderID:  "order_abc123",
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				if tt.widget.loadErr {
					assert.Empty(t, tt.widget.opened)
				}
				return
			}
			require.NoError(t, err)
			require.Len(t, tt.widget.opened, 1)
			assert.Equal(t, "rzp_test_key", tt.widget.opened[0].Key)
			assert.Equal(t, "order_abc123", tt.widget.opened[0].OrderID)
		})
	}
}
