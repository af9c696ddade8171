package purchase

import (
	"strings"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared"
)

// SubscriptionStatus mirrors the provider's subscription states
type SubscriptionStatus string

const (
	SubscriptionIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionTrialing          SubscriptionStatus = "trialing"
	SubscriptionActive            SubscriptionStatus = "active"
	SubscriptionPastDue           SubscriptionStatus = "past_due"
	SubscriptionCanceled          SubscriptionStatus = "canceled"
	SubscriptionUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionPaused            SubscriptionStatus = "paused"
)

// ParseSubscriptionStatus maps a provider status string, defaulting to incomplete
func ParseSubscriptionStatus(s string) SubscriptionStatus {
	switch st := SubscriptionStatus(strings.ToLower(s)); st {
	case SubscriptionIncomplete, SubscriptionIncompleteExpired, SubscriptionTrialing,
		SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled,
		SubscriptionUnpaid, SubscriptionPaused:
		return st
	}
	return SubscriptionIncomplete
}

// IsLive returns true while the customer has access
func (s SubscriptionStatus) IsLive() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing || s == SubscriptionPastDue
}

// Subscription tracks one provider subscription
type Subscription struct {
	shared.BaseEntity
	StripeSubscriptionID string
	CustomerID           string
	CustomerEmail        string
	PriceID              string
	Status               SubscriptionStatus
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	CanceledAt           *time.Time
	UserID               string
}

// NewSubscription creates a subscription record in the incomplete state
func NewSubscription(stripeSubscriptionID, customerID string) (*Subscription, error) {
	if stripeSubscriptionID == "" {
		return nil, shared.NewValidationError("subscriptionId", "is required")
	}
	return &Subscription{
		BaseEntity:           shared.NewBaseEntity(),
		StripeSubscriptionID: stripeSubscriptionID,
		CustomerID:           customerID,
		Status:               SubscriptionIncomplete,
	}, nil
}

// SyncState is the provider-reported state of a subscription
type SyncState struct {
	Status            string
	PriceID           string
	CurrentPeriodEnd  int64
	CancelAtPeriodEnd bool
	CanceledAt        int64
}

// Sync overwrites the record with the provider state
func (s *Subscription) Sync(st SyncState) {
	s.Status = ParseSubscriptionStatus(st.Status)
	if st.PriceID != "" {
		s.PriceID = st.PriceID
	}
	s.CurrentPeriodEnd = unixPtr(st.CurrentPeriodEnd)
	s.CancelAtPeriodEnd = st.CancelAtPeriodEnd
	s.CanceledAt = unixPtr(st.CanceledAt)
	s.Touch()
}

// MarkActive is applied when an invoice is paid
func (s *Subscription) MarkActive() {
	s.Status = SubscriptionActive
	s.Touch()
}

// MarkPastDue is applied when an invoice payment fails
func (s *Subscription) MarkPastDue() {
	s.Status = SubscriptionPastDue
	s.Touch()
}

// MarkCanceled is applied when the subscription is deleted at the provider
func (s *Subscription) MarkCanceled(at time.Time) {
	s.Status = SubscriptionCanceled
	at = at.UTC()
	s.CanceledAt = &at
	s.Touch()
}

func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
