package checkout

import (
	"github.com/shopspring/decimal"
)

// BillingInterval is the recurrence of a subscription item.
// The empty value means a one-time purchase.
type BillingInterval string

const (
	IntervalNone  BillingInterval = ""
	IntervalMonth BillingInterval = "month"
	IntervalYear  BillingInterval = "year"
)

// IsValid returns true for month, year and the empty interval.
func (b BillingInterval) IsValid() bool {
	switch b {
	case IntervalNone, IntervalMonth, IntervalYear:
		return true
	}
	return false
}

// IsRecurring returns true for month and year.
func (b BillingInterval) IsRecurring() bool {
	return b == IntervalMonth || b == IntervalYear
}

// CheckoutMode is whether a session is a one-time payment or a subscription.
type CheckoutMode string

const (
	ModePayment      CheckoutMode = "payment"
	ModeSubscription CheckoutMode = "subscription"
)

// IsValid returns true for payment and subscription.
func (m CheckoutMode) IsValid() bool {
	return m == ModePayment || m == ModeSubscription
}

// CartItem is one purchasable unit in a checkout request.
//
// When StripePriceID is set the catalog is authoritative and Name, Description
// and Price are ignored for pricing.
type CartItem struct {
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Quantity        int64            `json:"quantity,omitempty"`
	BillingInterval BillingInterval  `json:"billingInterval,omitempty"`
	StripePriceID   string           `json:"stripe_price_id,omitempty"`
}

// EffectiveQuantity returns the quantity, defaulting to 1.
func (c CartItem) EffectiveQuantity() int64 {
	if c.Quantity == 0 {
		return 1
	}
	return c.Quantity
}

// CheckoutRequest is the outer checkout request.
type CheckoutRequest struct {
	Items              []CartItem     `json:"items"`
	SuccessURL         string         `json:"successUrl"`
	CancelURL          string         `json:"cancelUrl"`
	CustomerEmail      string         `json:"customerEmail,omitempty"`
	GiftRecipientEmail string         `json:"giftRecipientEmail,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	UserID             string         `json:"userId,omitempty"`
}

// NormalizedCheckout is the provider-ready form of a CheckoutRequest.
type NormalizedCheckout struct {
	Mode          CheckoutMode
	LineItems     []LineItem
	Metadata      map[string]string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}
