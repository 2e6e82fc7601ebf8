package models

import "time"

// Currency is one of the two currencies the checkout can display.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// Order represents a finalized order record. It is created only after the
// payment gateway reports success; status transitions are server-authoritative.
type Order struct {
	ID               string      `json:"id"`
	ContactName      string      `json:"contact_name"`
	ContactEmail     string      `json:"contact_email"`
	ContactPhone     string      `json:"contact_phone"`
	Requirements     string      `json:"requirements"`
	ServiceTitle     string      `json:"service_title"`
	Quantity         int         `json:"quantity"`
	UnitPriceBase    float64     `json:"unit_price_base"`
	UnitPriceDisplay float64     `json:"unit_price_display"`
	Currency         Currency    `json:"currency"`
	TotalBase        float64     `json:"total_base"`
	TotalDisplay     float64     `json:"total_display"`
	ResumeURL        string      `json:"resume_url,omitempty"`
	DocumentURLs     []string    `json:"document_urls,omitempty"`
	GatewayOrderID   string      `json:"gateway_order_id"`
	GatewayPaymentID string      `json:"gateway_payment_id"`
	Status           OrderStatus `json:"status"`
	UserID           string      `json:"user_id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrderStatus represents the current status of a persisted order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Service is a purchasable catalog entry. Immutable for the process lifetime.
type Service struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	BasePrice         float64 `json:"base_price"` // INR
	RequiresResume    bool    `json:"requires_resume"`
	RequiresDocuments bool    `json:"requires_documents"`
	RatingDisplay     string  `json:"rating_display"`
}

// User is the session identity seeded into a fresh checkout form.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// FileRef points at a local file selected for upload. The checkout validation
// step checks name and size before any upload is attempted.
type FileRef struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// CheckoutForm is the ephemeral per-checkout state. Created when the form
// opens, mutated by user input and currency toggles, discarded on close or
// successful submission.
type CheckoutForm struct {
	ContactName      string    `json:"contact_name"`
	ContactEmail     string    `json:"contact_email"`
	ContactPhone     string    `json:"contact_phone"`
	Requirements     string    `json:"requirements"`
	Quantity         int       `json:"quantity"`
	UnitPriceBase    float64   `json:"unit_price_base"` // INR
	UnitPriceDisplay float64   `json:"unit_price_display"`
	SelectedCurrency Currency  `json:"selected_currency"`
	Resume           *FileRef  `json:"resume,omitempty"`
	Documents        []FileRef `json:"documents,omitempty"`
}

// Total returns quantity times the displayed unit price.
func (f CheckoutForm) Total() float64 {
	return f.UnitPriceDisplay * float64(f.Quantity)
}

// ExchangeRate is the process-wide USD->INR rate snapshot.
type ExchangeRate struct {
	Rate      float64   `json:"rate"` // USD -> INR
	FetchedAt time.Time `json:"fetched_at"`
}

// CheckoutState is the queryable state of a running checkout workflow.
type CheckoutState struct {
	CheckoutID       string    `json:"checkout_id"`
	Phase            string    `json:"phase"`
	UploadedURLs     []string  `json:"uploaded_urls,omitempty"`
	GatewayOrderID   string    `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	OrderID          string    `json:"order_id,omitempty"`
	Error            string    `json:"error,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

// PaymentResult is the payload the gateway callback delivers on success.
type PaymentResult struct {
	PaymentID     string `json:"razorpay_payment_id"`
	OrderID       string `json:"razorpay_order_id"`
	PaymentMethod string `json:"razorpay_payment_method,omitempty"`
}
