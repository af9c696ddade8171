package checkout

import (
	"github.com/fitcoach/backend/internal/domain/checkout"
)

// SessionResult identifies a created hosted session
type SessionResult struct {
	SessionID string
	URL       string
	Mode      checkout.CheckoutMode
}

// PaymentIntentRequest asks for a payment against one catalog price
type PaymentIntentRequest struct {
	PriceID    string
	UserID     string
	CustomerID string
	Metadata   map[string]any
	UIMode     string
	SuccessURL string
	CancelURL  string
}

// PaymentIntentResult carries a client secret for the elements variant, or
// a session for the hosted variant
type PaymentIntentResult struct {
	UIMode          UIMode
	ClientSecret    string
	PaymentIntentID string
	SubscriptionID  string
	SessionID       string
	URL             string
}
