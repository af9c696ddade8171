package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaxUnitAmount is the largest unit_amount, in minor units, the provider accepts.
const MaxUnitAmount = 99_999_999

var maxUnitAmount = decimal.NewFromInt(MaxUnitAmount)

// MixedCartPolicy decides what happens to a cart that mixes one-time and
// recurring items.
type MixedCartPolicy string

const (
	// MixedCartFilter keeps only the items matching the requested mode.
	MixedCartFilter MixedCartPolicy = "filter"
	// MixedCartReject fails the request.
	MixedCartReject MixedCartPolicy = "reject"
)

// IsValid returns true for known policies.
func (p MixedCartPolicy) IsValid() bool {
	return p == MixedCartFilter || p == MixedCartReject
}

// ErrMixedCart is returned by SelectMode when some items are recurring and
// some are not.
var ErrMixedCart = &shared.ValidationError{
	Field:   "items",
	Message: "cart mixes one-time and recurring items",
}

// Normalizer builds provider-ready checkout input from a cart.
type Normalizer struct {
	currency string
	lookup   IntervalLookup
	policy   MixedCartPolicy
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithCurrency sets the currency for inline prices.
func WithCurrency(currency string) Option {
	return func(n *Normalizer) {
		if currency != "" {
			n.currency = currency
		}
	}
}

// WithIntervalLookup sets the lookup used to classify catalog prices.
func WithIntervalLookup(lookup IntervalLookup) Option {
	return func(n *Normalizer) {
		n.lookup = lookup
	}
}

// WithMixedCartPolicy sets the mixed cart policy.
func WithMixedCartPolicy(policy MixedCartPolicy) Option {
	return func(n *Normalizer) {
		if policy.IsValid() {
			n.policy = policy
		}
	}
}

// NewNormalizer creates a Normalizer. Defaults are usd, no interval lookup
// and the filter policy.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		currency: valueobject.DefaultCurrency,
		policy:   MixedCartFilter,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Currency returns the currency used for inline prices.
func (n *Normalizer) Currency() string {
	return n.currency
}

// BuildLineItems maps cart items to line items.
//
// Catalog prices pass through unchanged. Inline prices are converted to
// integer minor units as round(price * 100), rounding half away from zero.
func (n *Normalizer) BuildLineItems(items []CartItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("items", "must contain at least one item")
	}

	lineItems := make([]LineItem, 0, len(items))
	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return nil, err
		}

		if item.StripePriceID != "" {
			lineItems = append(lineItems, LineItem{
				Price:    item.StripePriceID,
				Quantity: item.EffectiveQuantity(),
			})
			continue
		}

		amount, err := valueobject.NewMoney(*item.Price, n.currency)
		if err != nil {
			return nil, fmt.Errorf("checkout: build line item %d: %w", i, err)
		}

		if amount.MinorAmount().GreaterThan(maxUnitAmount) {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].price", i),
				"must be at most %d minor units, got %s", MaxUnitAmount, amount.MinorAmount())
		}

		priceData := &PriceData{
			Currency:   amount.Currency(),
			UnitAmount: amount.MinorUnits(),
			ProductData: ProductData{
				Name:        item.Name,
				Description: item.Description,
			},
		}
		if item.BillingInterval.IsRecurring() {
			priceData.Recurring = &Recurring{Interval: item.BillingInterval}
		}

		lineItems = append(lineItems, LineItem{
			PriceData: priceData,
			Quantity:  item.EffectiveQuantity(),
		})
	}
	return lineItems, nil
}

// SelectMode returns subscription when every item is recurring and payment
// when none is. Mixed carts return ErrMixedCart.
func (n *Normalizer) SelectMode(ctx context.Context, items []CartItem) (CheckoutMode, error) {
	if len(items) == 0 {
		return "", shared.NewValidationError("items", "must contain at least one item")
	}

	recurring := 0
	for _, item := range items {
		interval, err := n.intervalOf(ctx, item)
		if err != nil {
			return "", err
		}
		if interval.IsRecurring() {
			recurring++
		}
	}

	switch recurring {
	case len(items):
		return ModeSubscription, nil
	case 0:
		return ModePayment, nil
	default:
		return "", ErrMixedCart
	}
}

// FilterForMode keeps the items whose recurrence matches mode.
func (n *Normalizer) FilterForMode(ctx context.Context, items []CartItem, mode CheckoutMode) ([]CartItem, error) {
	if !mode.IsValid() {
		return nil, shared.NewValidationError("mode", "unknown checkout mode %q", mode)
	}

	wantRecurring := mode == ModeSubscription
	filtered := make([]CartItem, 0, len(items))
	for _, item := range items {
		interval, err := n.intervalOf(ctx, item)
		if err != nil {
			return nil, err
		}
		if interval.IsRecurring() == wantRecurring {
			filtered = append(filtered, item)
		}
	}

	if len(filtered) == 0 {
		if wantRecurring {
			return nil, shared.NewValidationError("items", "no subscription items in cart")
		}
		return nil, shared.NewValidationError("items", "no one-time items in cart")
	}
	return filtered, nil
}

// Normalize validates req and produces the mode, line items and metadata for
// a checkout session.
//
// An empty requestedMode selects the mode from the cart. A non-empty one is
// the endpoint's fixed mode, and items of the other kind are filtered out or
// rejected according to the mixed cart policy.
func (n *Normalizer) Normalize(ctx context.Context, req CheckoutRequest, requestedMode CheckoutMode) (*NormalizedCheckout, error) {
	if requestedMode != "" && !requestedMode.IsValid() {
		return nil, shared.NewValidationError("mode", "unknown checkout mode %q", requestedMode)
	}
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "must contain at least one item")
	}
	for i, item := range req.Items {
		if err := validateItem(i, item); err != nil {
			return nil, err
		}
	}
	if req.SuccessURL == "" {
		return nil, shared.NewValidationError("successUrl", "is required")
	}
	if req.CancelURL == "" {
		return nil, shared.NewValidationError("cancelUrl", "is required")
	}

	items := req.Items
	mode, err := n.SelectMode(ctx, items)
	switch {
	case errors.Is(err, ErrMixedCart):
		if n.policy == MixedCartReject {
			return nil, shared.NewValidationError("items",
				"cart mixes one-time and recurring items; check them out separately")
		}
		mode = requestedMode
		if mode == "" {
			mode = ModePayment
		}
		if items, err = n.FilterForMode(ctx, items, mode); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case requestedMode != "" && mode != requestedMode:
		// Every item is of the other kind, so filtering leaves nothing.
		_, err := n.FilterForMode(ctx, items, requestedMode)
		return nil, err
	}

	lineItems, err := n.BuildLineItems(items)
	if err != nil {
		return nil, err
	}

	metadata, err := AttachMetadata(req.Metadata, MetadataContext{
		GiftRecipientEmail: req.GiftRecipientEmail,
		UserID:             req.UserID,
		IsSubscription:     mode == ModeSubscription,
	})
	if err != nil {
		return nil, err
	}

	return &NormalizedCheckout{
		Mode:          mode,
		LineItems:     lineItems,
		Metadata:      metadata,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	}, nil
}

func (n *Normalizer) intervalOf(ctx context.Context, item CartItem) (BillingInterval, error) {
	if item.BillingInterval != IntervalNone || item.StripePriceID == "" || n.lookup == nil {
		return item.BillingInterval, nil
	}
	interval, found, err := n.lookup.RecurringInterval(ctx, item.StripePriceID)
	if err != nil {
		return IntervalNone, err
	}
	if !found {
		return IntervalNone, nil
	}
	return interval, nil
}

func validateItem(i int, item CartItem) error {
	field := fmt.Sprintf("items[%d]", i)

	if !item.BillingInterval.IsValid() {
		return shared.NewValidationError(field+".billingInterval",
			"must be month or year, got %q", item.BillingInterval)
	}
	if item.Quantity < 0 {
		return shared.NewValidationError(field+".quantity", "must be a positive integer")
	}
	if item.StripePriceID != "" {
		return nil
	}
	if item.Price == nil {
		return shared.NewValidationError(field, "requires stripe_price_id or a numeric price")
	}
	if item.Price.IsNegative() {
		return shared.NewValidationError(field+".price", "must not be negative")
	}
	if item.Name == "" {
		return shared.NewValidationError(field+".name", "is required for an inline price")
	}
	return nil
}
