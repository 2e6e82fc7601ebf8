// Package checkout models the checkout session as a pure state machine.
// Reduce is free of I/O so every transition is testable without a UI,
// a network, or a running workflow engine.
package checkout

import (
	"freelance-checkout-system/currency"
	"freelance-checkout-system/models"
)

// State is the phase a checkout session is in.
type State string

const (
	StateIdle                 State = "IDLE"
	StateFormOpen             State = "FORM_OPEN"
	StateValidating           State = "VALIDATING"
	StateUploading            State = "UPLOADING"
	StateCreatingGatewayOrder State = "CREATING_GATEWAY_ORDER"
	StateAwaitingGatewayUI    State = "AWAITING_GATEWAY_UI"
	StatePersisting           State = "PERSISTING"
	StateDone                 State = "DONE"
)

func (s State) IsTerminal() bool {
	return s == StateDone
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// Session is one checkout attempt: the open form plus where the submit
// pipeline has progressed to. Discarded on close or completion.
type Session struct {
	State   State
	Service models.Service
	Form    models.CheckoutForm
	Err     string
	Field   string // field the error belongs to, for inline display
}

// Event is a tagged union of everything that can happen to a session.
type Event interface{ isEvent() }

// OpenForm seeds a fresh form from the selected service, the signed-in user
// (may be nil) and the current USD->INR rate.
type OpenForm struct {
	Service models.Service
	User    *models.User
	Rate    float64
}

// CloseForm discards the session.
type CloseForm struct{}

// SetContact overwrites the contact fields.
type SetContact struct {
	Name, Email, Phone, Requirements string
}

// IncrementQuantity raises quantity by one.
type IncrementQuantity struct{}

// DecrementQuantity lowers quantity by one; a no-op at 1.
type DecrementQuantity struct{}

// SetCurrency switches the display currency, recomputing the display price
// from the original base price at the given rate.
type SetCurrency struct {
	Currency models.Currency
	Rate     float64
}

// EditPrice sets the display price directly. The base price is back-converted
// only when the selected currency is USD; an INR edit leaves the base price
// untouched.
type EditPrice struct {
	Value float64
	Rate  float64
}

// AttachResume sets the resume file.
type AttachResume struct{ File models.FileRef }

// AttachDocument appends a document file.
type AttachDocument struct{ File models.FileRef }

// Submit moves the form into the pipeline.
type Submit struct{}

// ValidationFailed returns to the open form with a field-level error.
type ValidationFailed struct{ Field, Message string }

// ValidationPassed advances to uploading.
type ValidationPassed struct{}

// UploadsCompleted advances to gateway order creation.
type UploadsCompleted struct{}

// GatewayOrderCreated advances to awaiting the gateway UI.
type GatewayOrderCreated struct{ OrderID string }

// PaymentCompleted advances to persisting.
type PaymentCompleted struct{ PaymentID string }

// OrderPersisted completes the session.
type OrderPersisted struct{ OrderID string }

// StepFailed returns to the open form from any pipeline step, keeping every
// entered field so the user can resubmit.
type StepFailed struct{ Message string }

func (OpenForm) isEvent()            {}
func (CloseForm) isEvent()           {}
func (SetContact) isEvent()          {}
func (IncrementQuantity) isEvent()   {}
func (DecrementQuantity) isEvent()   {}
func (SetCurrency) isEvent()         {}
func (EditPrice) isEvent()           {}
func (AttachResume) isEvent()        {}
func (AttachDocument) isEvent()      {}
func (Submit) isEvent()              {}
func (ValidationFailed) isEvent()    {}
func (ValidationPassed) isEvent()    {}
func (UploadsCompleted) isEvent()    {}
func (GatewayOrderCreated) isEvent() {}
func (PaymentCompleted) isEvent()    {}
func (OrderPersisted) isEvent()      {}
func (StepFailed) isEvent()          {}

// NewSession returns an idle session.
func NewSession() Session {
	return Session{State: StateIdle}
}

// Reduce applies one event to a session and returns the next session.
// Events that are not meaningful in the current state leave it unchanged.
func Reduce(s Session, e Event) Session {
	switch ev := e.(type) {
	case OpenForm:
		form := models.CheckoutForm{
			Quantity:         1,
			UnitPriceBase:    ev.Service.BasePrice,
			UnitPriceDisplay: ev.Service.BasePrice,
			SelectedCurrency: models.CurrencyINR,
		}
		if ev.User != nil {
			form.ContactName = ev.User.Name
			form.ContactEmail = ev.User.Email
			form.ContactPhone = ev.User.Phone
		}
		return Session{State: StateFormOpen, Service: ev.Service, Form: form}

	case CloseForm:
		return NewSession()

	case SetContact:
		if s.State != StateFormOpen {
			return s
		}
		s.Form.ContactName = ev.Name
		s.Form.ContactEmail = ev.Email
		s.Form.ContactPhone = ev.Phone
		s.Form.Requirements = ev.Requirements
		return s

	case IncrementQuantity:
		if s.State != StateFormOpen {
			return s
		}
		s.Form.Quantity++
		return s

	case DecrementQuantity:
		if s.State != StateFormOpen || s.Form.Quantity <= 1 {
			return s
		}
		s.Form.Quantity--
		return s

	case SetCurrency:
		if s.State != StateFormOpen {
			return s
		}
		s.Form.SelectedCurrency = ev.Currency
		s.Form.UnitPriceDisplay = currency.Round2(
			currency.Convert(s.Form.UnitPriceBase, models.CurrencyINR, ev.Currency, ev.Rate))
		return s

	case EditPrice:
		if s.State != StateFormOpen {
			return s
		}
		s.Form.UnitPriceDisplay = ev.Value
		if s.Form.SelectedCurrency == models.CurrencyUSD {
			s.Form.UnitPriceBase = currency.Round2(
				currency.Convert(ev.Value, models.CurrencyUSD, models.CurrencyINR, ev.Rate))
		}
		return s

	case AttachResume:
		if s.State != StateFormOpen {
			return s
		}
		f := ev.File
		s.Form.Resume = &f
		return s

	case AttachDocument:
		if s.State != StateFormOpen {
			return s
		}
		s.Form.Documents = append(s.Form.Documents, ev.File)
		return s

	case Submit:
		if s.State != StateFormOpen {
			return s
		}
		s.State = StateValidating
		s.Err, s.Field = "", ""
		return s

	case ValidationFailed:
		if s.State != StateValidating {
			return s
		}
		s.State = StateFormOpen
		s.Err, s.Field = ev.Message, ev.Field
		return s

	case ValidationPassed:
		if s.State != StateValidating {
			return s
		}
		s.State = StateUploading
		return s

	case UploadsCompleted:
		if s.State != StateUploading {
			return s
		}
		s.State = StateCreatingGatewayOrder
		return s

	case GatewayOrderCreated:
		if s.State != StateCreatingGatewayOrder {
			return s
		}
		s.State = StateAwaitingGatewayUI
		return s

	case PaymentCompleted:
		if s.State != StateAwaitingGatewayUI {
			return s
		}
		s.State = StatePersisting
		return s

	case OrderPersisted:
		if s.State != StatePersisting {
			return s
		}
		s.State = StateDone
		return s

	case StepFailed:
		switch s.State {
		case StateValidating, StateUploading, StateCreatingGatewayOrder,
			StateAwaitingGatewayUI, StatePersisting:
			s.State = StateFormOpen
			s.Err, s.Field = ev.Message, ""
			return s
		}
		return s
	}
	return s
}
