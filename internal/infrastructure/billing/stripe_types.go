package billing

import (
	"time"

	"github.com/fitcoach/backend/internal/domain/checkout"
)

// MetaKeyOrigin marks payment intents created directly rather than by a
// checkout session or an invoice
const (
	MetaKeyOrigin  = checkout.MetaKeyOrigin
	OriginElements = checkout.OriginElements
)

// CheckoutSessionOutput identifies a created hosted checkout session
type CheckoutSessionOutput struct {
	SessionID string
	URL       string
}

// PriceCheckoutInput contains input for a single-price hosted checkout
type PriceCheckoutInput struct {
	PriceID    string
	Recurring  bool
	CustomerID string
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}

// PriceInfo is a catalog price, with its product when expanded
type PriceInfo struct {
	ID         string
	Active     bool
	Currency   string
	UnitAmount int64
	Interval   string // month, year, or empty for one-time prices
	LookupKey  string
	Product    *ProductInfo
}

// IsRecurring returns true for recurring prices
func (p *PriceInfo) IsRecurring() bool {
	return p.Interval != ""
}

// ProductInfo is a catalog product
type ProductInfo struct {
	ID          string
	Name        string
	Description string
	Images      []string
	Metadata    map[string]string
	Active      bool
}

// CreateProductPriceInput defines a product and its single price
type CreateProductPriceInput struct {
	LookupKey   string
	Name        string
	Description string
	UnitAmount  int64
	Currency    string
	Interval    string
}

// CreateSubscriptionInput contains input for creating an incomplete subscription
type CreateSubscriptionInput struct {
	CustomerID string
	PriceID    string
	Metadata   map[string]string
}

// CreateSubscriptionOutput contains the created subscription and the secret
// the frontend confirms its first payment with
type CreateSubscriptionOutput struct {
	SubscriptionID  string
	CustomerID      string
	Status          string
	ClientSecret    string
	LatestInvoiceID string
}

// CreatePaymentIntentInput contains input for a one-time PaymentIntent
type CreatePaymentIntentInput struct {
	Amount     int64
	Currency   string
	CustomerID string
	Metadata   map[string]string
}

// PaymentIntentOutput contains the created PaymentIntent
type PaymentIntentOutput struct {
	PaymentIntentID string
	ClientSecret    string
	Status          string
}

// SessionLineItem is a purchased line of a completed checkout session
type SessionLineItem struct {
	Description string
	Quantity    int64
	AmountTotal int64
	Currency    string
	PriceID     string
}

// CouponInput contains input for creating a coupon. Exactly one of
// PercentOff and AmountOff is set.
type CouponInput struct {
	ID               string
	Name             string
	PercentOff       float64
	AmountOff        int64
	Currency         string
	Duration         string // once, repeating, forever
	DurationInMonths int64
	MaxRedemptions   int64
}

// Coupon is a Stripe coupon
type Coupon struct {
	ID               string
	Name             string
	PercentOff       float64
	AmountOff        int64
	Currency         string
	Duration         string
	DurationInMonths int64
	MaxRedemptions   int64
	TimesRedeemed    int64
	Valid            bool
	CreatedAt        time.Time
}

// WebhookEndpoint is a registered Stripe webhook destination
type WebhookEndpoint struct {
	ID            string
	URL           string
	Status        string
	EnabledEvents []string
	// Secret is only returned when the endpoint is created
	Secret string
}
