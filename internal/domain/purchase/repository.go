package purchase

import (
	"context"
)

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	// FindByExternalID finds a purchase by its provider object id
	FindByExternalID(ctx context.Context, externalID string) (*Purchase, error)

	// Save creates or updates a purchase, keyed by external id
	Save(ctx context.Context, p *Purchase) error
}

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	// FindByStripeID finds a subscription by the provider subscription id
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)

	// Save creates or updates a subscription, keyed by provider id
	Save(ctx context.Context, s *Subscription) error
}
