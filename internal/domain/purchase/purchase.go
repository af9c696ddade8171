// Package purchase holds the records written when a checkout completes:
// one-time purchases and the lifecycle of subscriptions.
package purchase

import (
	"strings"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/domain/shared/valueobject"
	"github.com/segmentio/ksuid"
)

// Source identifies the provider object a purchase was recorded from
type Source string

const (
	SourceCheckoutSession Source = "checkout_session"
	SourcePaymentIntent   Source = "payment_intent"
)

// Status is the payment state of a purchase
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusUnpaid   Status = "unpaid"
	StatusRefunded Status = "refunded"
)

// Purchase is a completed or pending order recorded from a provider event.
// ExternalID is unique per source, so replays update rather than duplicate.
type Purchase struct {
	shared.BaseEntity
	Reference          string
	Source             Source
	ExternalID         string
	PaymentIntentID    string
	SubscriptionID     string
	CustomerID         string
	CustomerEmail      string
	Mode               checkout.CheckoutMode
	AmountTotal        int64
	Currency           string
	Status             Status
	IsGift             bool
	GiftRecipientEmail string
	UserID             string
	Metadata           map[string]string
	ReceiptKey         string
}

// NewPurchase creates a purchase with a fresh customer-facing reference
func NewPurchase(source Source, externalID string) (*Purchase, error) {
	if source != SourceCheckoutSession && source != SourcePaymentIntent {
		return nil, shared.NewValidationError("source", "unknown purchase source %q", source)
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, shared.NewValidationError("externalId", "is required")
	}
	return &Purchase{
		BaseEntity: shared.NewBaseEntity(),
		Reference:  NewReference(),
		Source:     source,
		ExternalID: externalID,
		Status:     StatusPending,
		Mode:       checkout.ModePayment,
		Currency:   valueobject.DefaultCurrency,
		Metadata:   map[string]string{},
	}, nil
}

// NewReference returns a sortable, unique reference code for receipts
func NewReference() string {
	return "FC-" + strings.ToUpper(ksuid.New().String())
}

// ApplyMetadata copies the computed checkout fields onto the purchase
func (p *Purchase) ApplyMetadata(md map[string]string) {
	mc := checkout.ReadMetadata(md)
	p.IsGift = mc.IsGift()
	p.GiftRecipientEmail = mc.GiftRecipientEmail
	p.UserID = mc.UserID
	if mc.IsSubscription {
		p.Mode = checkout.ModeSubscription
	}
	p.Metadata = make(map[string]string, len(md))
	for k, v := range md {
		p.Metadata[k] = v
	}
	p.Touch()
}

// Total returns the purchase total as money
func (p *Purchase) Total() (valueobject.Money, error) {
	return valueobject.FromMinorUnits(p.AmountTotal, p.Currency)
}

// MarkPaid records the amount captured
func (p *Purchase) MarkPaid(amount int64, currency string) {
	p.Status = StatusPaid
	p.AmountTotal = amount
	if currency != "" {
		p.Currency = strings.ToLower(currency)
	}
	p.Touch()
}

// MarkPaymentFailed records a delayed payment that did not settle. A paid
// purchase keeps its status.
func (p *Purchase) MarkPaymentFailed() {
	if p.Status == StatusPaid {
		return
	}
	p.Status = StatusUnpaid
	p.Touch()
}

// AttachReceipt records where the receipt PDF was archived
func (p *Purchase) AttachReceipt(key string) {
	p.ReceiptKey = key
	p.Touch()
}
