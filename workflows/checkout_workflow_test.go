package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"freelance-checkout-system/activities"
	"freelance-checkout-system/gateway"
	"freelance-checkout-system/models"
	"freelance-checkout-system/uploads"
)

var (
	checkoutAct *activities.CheckoutActivities
	gatewayAct  *activities.GatewayActivities
)

func jobApplyService() models.Service {
	return models.Service{
		ID:                "SVC-JOB-APPLY",
		Title:             "Job Application Assistance",
		BasePrice:         799,
		RequiresResume:    true,
		RequiresDocuments: true,
	}
}

func submittedForm() models.CheckoutForm {
	return models.CheckoutForm{
		ContactName:      "Asha Rao",
		ContactEmail:     "asha@example.com",
		ContactPhone:     "+911234567890",
		Quantity:         3,
		UnitPriceBase:    799,
		UnitPriceDisplay: 9.63,
		SelectedCurrency: models.CurrencyUSD,
		Resume:           &models.FileRef{Name: "resume.pdf", Path: "/tmp/resume.pdf", Size: 1024},
		Documents: []models.FileRef{
			{Name: "passport.png", Path: "/tmp/passport.png", Size: 2048},
		},
	}
}

func newCheckoutEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CheckoutWorkflow)
	env.RegisterWorkflow(GatewayPaymentWorkflow)
	return env
}

func TestCheckoutWorkflow_HappyPath(t *testing.T) {
	env := newCheckoutEnv(t)

	input := CheckoutInput{
		CheckoutID: "chk-001",
		Service:    jobApplyService(),
		Form:       submittedForm(),
		UserID:     "user-1",
	}

	env.OnActivity(checkoutAct.UploadAttachment, mock.Anything, mock.Anything, uploads.KindResume).
		Return("https://cdn.example.com/resume.pdf", nil)
	env.OnActivity(checkoutAct.UploadAttachment, mock.Anything, mock.Anything, uploads.KindDocument).
		Return("https://cdn.example.com/passport.png", nil)
	env.OnActivity(gatewayAct.CreateGatewayOrder, mock.Anything, mock.Anything).
		Return(gateway.Order{ID: "order_abc123", Amount: 2889, Currency: models.CurrencyUSD}, nil)
	env.OnActivity(gatewayAct.OpenCheckoutWidget, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(checkoutAct.PersistOrder, mock.Anything, mock.Anything).
		Return(func(ctx context.Context, order models.Order) (models.Order, error) {
			order.ID = "ord-001"
			order.Status = models.OrderStatusPaid
			return order, nil
		})
	env.OnActivity(checkoutAct.NotifyCustomer, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	env.RegisterDelayedCallback(func() {
		err := env.SignalWorkflowByID(
			GatewayPaymentWorkflowID("chk-001"),
			SignalPaymentCompleted,
			models.PaymentResult{PaymentID: "pay_xyz789", PaymentMethod: "upi"},
		)
		assert.NoError(t, err)
	}, time.Minute)

	env.ExecuteWorkflow(CheckoutWorkflow, input)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var order models.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.Equal(t, "ord-001", order.ID)
	assert.Equal(t, "order_abc123", order.GatewayOrderID)
	assert.Equal(t, "pay_xyz789", order.GatewayPaymentID)
	assert.Equal(t, "https://cdn.example.com/resume.pdf", order.ResumeURL)
	assert.Equal(t, []string{"https://cdn.example.com/passport.png"}, order.DocumentURLs)
	assert.InDelta(t, 28.89, order.TotalDisplay, 0.001)
	assert.InDelta(t, 2397, order.TotalBase, 0.001)

	val, err := env.QueryWorkflow(QueryState)
	require.NoError(t, err)
	var state models.CheckoutState
	require.NoError(t, val.Get(&state))
	assert.Equal(t, "DONE", state.Phase)
	assert.Equal(t, "ord-001", state.OrderID)
	assert.Equal(t, "pay_xyz789", state.GatewayPaymentID)
}

func TestCheckoutWorkflow_ValidationFailureUploadsNothing(t *testing.T) {
	env := newCheckoutEnv(t)

	form := submittedForm()
	form.ContactEmail = ""

	env.ExecuteWorkflow(CheckoutWorkflow, CheckoutInput{
		CheckoutID: "chk-002",
		Service:    jobApplyService(),
		Form:       form,
		UserID:     "user-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	env.AssertNotCalled(t, "UploadAttachment")
}

func TestCheckoutWorkflow_UploadFailureStopsPipeline(t *testing.T) {
	env := newCheckoutEnv(t)

	env.OnActivity(checkoutAct.UploadAttachment, mock.Anything, mock.Anything, uploads.KindResume).
		Return("", errors.New("storage quota exceeded"))

	env.ExecuteWorkflow(CheckoutWorkflow, CheckoutInput{
		CheckoutID: "chk-003",
		Service:    jobApplyService(),
		Form:       submittedForm(),
		UserID:     "user-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload failed")
	env.AssertNotCalled(t, "CreateGatewayOrder")
}

func TestCheckoutWorkflow_PersistFailureNotifiesSupport(t *testing.T) {
	env := newCheckoutEnv(t)

	env.OnActivity(checkoutAct.UploadAttachment, mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.example.com/file", nil)
	env.OnActivity(gatewayAct.CreateGatewayOrder, mock.Anything, mock.Anything).
		Return(gateway.Order{ID: "order_abc123", Amount: 2889, Currency: models.CurrencyUSD}, nil)
	env.OnActivity(gatewayAct.OpenCheckoutWidget, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(checkoutAct.PersistOrder, mock.Anything, mock.Anything).
		Return(models.Order{}, errors.New("database unavailable"))
	env.OnActivity(checkoutAct.NotifyCustomer, mock.Anything, mock.Anything,
		mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "contact support") && strings.Contains(msg, "pay_xyz789")
		})).Return(nil)

	env.RegisterDelayedCallback(func() {
		err := env.SignalWorkflowByID(
			GatewayPaymentWorkflowID("chk-004"),
			SignalPaymentCompleted,
			models.PaymentResult{PaymentID: "pay_xyz789"},
		)
		assert.NoError(t, err)
	}, time.Minute)

	env.ExecuteWorkflow(CheckoutWorkflow, CheckoutInput{
		CheckoutID: "chk-004",
		Service:    jobApplyService(),
		Form:       submittedForm(),
		UserID:     "user-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact support with payment id pay_xyz789")
	env.AssertExpectations(t)
}

func TestCheckoutWorkflow_AbandonWhileAwaitingPayment(t *testing.T) {
	env := newCheckoutEnv(t)

	env.OnActivity(checkoutAct.UploadAttachment, mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.example.com/file", nil)
	env.OnActivity(gatewayAct.CreateGatewayOrder, mock.Anything, mock.Anything).
		Return(gateway.Order{ID: "order_abc123", Amount: 2889, Currency: models.CurrencyUSD}, nil)
	env.OnActivity(gatewayAct.OpenCheckoutWidget, mock.Anything, mock.Anything).Return(nil)

	env.RegisterDelayedCallback(func() {
		err := env.SignalWorkflowByID(
			GatewayPaymentWorkflowID("chk-005"),
			SignalAbandon,
			nil,
		)
		assert.NoError(t, err)
	}, time.Minute)

	env.ExecuteWorkflow(CheckoutWorkflow, CheckoutInput{
		CheckoutID: "chk-005",
		Service:    jobApplyService(),
		Form:       submittedForm(),
		UserID:     "user-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abandoned")
	env.AssertNotCalled(t, "PersistOrder")
}
