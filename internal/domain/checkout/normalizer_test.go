package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type countingLookup struct {
	table StaticIntervalLookup
	calls int
	err   error
}

func (c *countingLookup) RecurringInterval(ctx context.Context, id string) (BillingInterval, bool, error) {
	c.calls++
	if c.err != nil {
		return IntervalNone, false, c.err
	}
	return c.table.RecurringInterval(ctx, id)
}

func validRequest(items ...CartItem) CheckoutRequest {
	return CheckoutRequest{
		Items:         items,
		SuccessURL:    "https://example.com/success",
		CancelURL:     "https://example.com/cancel",
		CustomerEmail: "buyer@example.com",
	}
}

// =============================================================================
// BuildLineItems Tests
// =============================================================================

func TestBuildLineItems_CatalogPricePassesThrough(t *testing.T) {
	n := NewNormalizer()

	items, err := n.BuildLineItems([]CartItem{{
		StripePriceID: "price_abc",
		Quantity:      2,
		Name:          "ignored",
		Price:         price("1.00"),
	}})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, LineItem{Price: "price_abc", Quantity: 2}, items[0])
	assert.Nil(t, items[0].PriceData)
}

func TestBuildLineItems_InlinePrice(t *testing.T) {
	n := NewNormalizer()

	items, err := n.BuildLineItems([]CartItem{{
		Name:            "Coaching",
		Price:           price("49.00"),
		BillingInterval: IntervalMonth,
	}})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].Quantity)
	require.NotNil(t, items[0].PriceData)
	assert.Equal(t, "usd", items[0].PriceData.Currency)
	assert.Equal(t, int64(4900), items[0].PriceData.UnitAmount)
	assert.Equal(t, "Coaching", items[0].PriceData.ProductData.Name)
	assert.Empty(t, items[0].PriceData.ProductData.Description)
	require.NotNil(t, items[0].PriceData.Recurring)
	assert.Equal(t, IntervalMonth, items[0].PriceData.Recurring.Interval)
}

func TestBuildLineItems_UnitAmountRounding(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"29.99", 2999},
		{"0.01", 1},
		{"19.995", 2000},
		{"19.994", 1999},
		{"100", 10000},
		{"0", 0},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			items, err := n.BuildLineItems([]CartItem{{Name: "Plan", Price: price(tt.price)}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, items[0].PriceData.UnitAmount)
			assert.Nil(t, items[0].PriceData.Recurring)
		})
	}
}

func TestBuildLineItems_UnitAmountCeiling(t *testing.T) {
	n := NewNormalizer()

	items, err := n.BuildLineItems([]CartItem{{Name: "Plan", Price: price("999999.99")}})
	require.NoError(t, err)
	assert.Equal(t, int64(MaxUnitAmount), items[0].PriceData.UnitAmount)

	for _, p := range []string{"1000000", "999999.995", "100000000000000000000"} {
		t.Run(p, func(t *testing.T) {
			items, err := n.BuildLineItems([]CartItem{{Name: "x", Price: price(p)}})
			require.Error(t, err)
			assert.Nil(t, items)
			assert.True(t, shared.IsValidation(err))
			assert.Contains(t, err.Error(), "items[0].price")
		})
	}
}

func TestBuildLineItems_UsesConfiguredCurrency(t *testing.T) {
	n := NewNormalizer(WithCurrency("eur"))

	items, err := n.BuildLineItems([]CartItem{{Name: "Plan", Price: price("10.50"), Description: "Eight weeks"}})

	require.NoError(t, err)
	assert.Equal(t, "eur", items[0].PriceData.Currency)
	assert.Equal(t, int64(1050), items[0].PriceData.UnitAmount)
	assert.Equal(t, "Eight weeks", items[0].PriceData.ProductData.Description)
}

func TestBuildLineItems_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		items   []CartItem
		wantMsg string
	}{
		{"empty cart", nil, "at least one item"},
		{"no price and no price id", []CartItem{{Name: "Plan"}}, "requires stripe_price_id or a numeric price"},
		{"no name", []CartItem{{Price: price("5")}}, "name"},
		{"negative price", []CartItem{{Name: "Plan", Price: price("-1")}}, "must not be negative"},
		{"negative quantity", []CartItem{{StripePriceID: "price_1", Quantity: -2}}, "quantity"},
		{"unknown interval", []CartItem{{Name: "Plan", Price: price("5"), BillingInterval: "week"}}, "month or year"},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.BuildLineItems(tt.items)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLineItem_ToCartItem_PreservesQuantityAndPrice(t *testing.T) {
	n := NewNormalizer()
	cart := []CartItem{
		{Name: "Coaching", Price: price("29.99"), Quantity: 3, BillingInterval: IntervalMonth},
		{Name: "Guide", Price: price("12.345"), Quantity: 1},
		{StripePriceID: "price_abc", Quantity: 2},
	}

	items, err := n.BuildLineItems(cart)
	require.NoError(t, err)

	oneCent := decimal.RequireFromString("0.01")
	for i, li := range items {
		back := li.ToCartItem()
		assert.Equal(t, cart[i].EffectiveQuantity(), back.Quantity)
		if cart[i].StripePriceID != "" {
			assert.Equal(t, cart[i].StripePriceID, back.StripePriceID)
			assert.Nil(t, back.Price)
			continue
		}
		require.NotNil(t, back.Price)
		diff := back.Price.Sub(*cart[i].Price).Abs()
		assert.True(t, diff.LessThanOrEqual(oneCent), "item %d drifted by %s", i, diff)
		assert.Equal(t, cart[i].BillingInterval, back.BillingInterval)
	}
}

// =============================================================================
// SelectMode / FilterForMode Tests
// =============================================================================

func TestSelectMode(t *testing.T) {
	ctx := context.Background()
	n := NewNormalizer()

	t.Run("all recurring is subscription", func(t *testing.T) {
		mode, err := n.SelectMode(ctx, []CartItem{
			{Name: "A", Price: price("1"), BillingInterval: IntervalMonth},
			{Name: "B", Price: price("1"), BillingInterval: IntervalYear},
		})
		require.NoError(t, err)
		assert.Equal(t, ModeSubscription, mode)
	})

	t.Run("all one-time is payment", func(t *testing.T) {
		mode, err := n.SelectMode(ctx, []CartItem{
			{Name: "A", Price: price("1")},
			{StripePriceID: "price_x"},
		})
		require.NoError(t, err)
		assert.Equal(t, ModePayment, mode)
	})

	t.Run("empty cart is a validation error", func(t *testing.T) {
		_, err := n.SelectMode(ctx, []CartItem{})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("mixed cart", func(t *testing.T) {
		_, err := n.SelectMode(ctx, []CartItem{
			{Name: "A", Price: price("1")},
			{Name: "B", Price: price("1"), BillingInterval: IntervalMonth},
		})
		assert.True(t, errors.Is(err, ErrMixedCart))
		assert.True(t, shared.IsValidation(err))
	})
}

func TestSelectMode_UsesIntervalLookupForCatalogPrices(t *testing.T) {
	lookup := &countingLookup{table: StaticIntervalLookup{"price_monthly": IntervalMonth}}
	n := NewNormalizer(WithIntervalLookup(lookup))

	mode, err := n.SelectMode(context.Background(), []CartItem{{StripePriceID: "price_monthly"}})
	require.NoError(t, err)
	assert.Equal(t, ModeSubscription, mode)
	assert.Equal(t, 1, lookup.calls)

	// Explicit intervals do not consult the lookup.
	_, err = n.SelectMode(context.Background(), []CartItem{{StripePriceID: "price_other", BillingInterval: IntervalYear}})
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.calls)
}

func TestSelectMode_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("catalog unavailable")
	n := NewNormalizer(WithIntervalLookup(&countingLookup{err: boom}))

	_, err := n.SelectMode(context.Background(), []CartItem{{StripePriceID: "price_1"}})
	assert.ErrorIs(t, err, boom)
}

func TestFilterForMode(t *testing.T) {
	ctx := context.Background()
	n := NewNormalizer()
	cart := []CartItem{
		{Name: "Guide", Price: price("10")},
		{Name: "Coaching", Price: price("49"), BillingInterval: IntervalMonth},
	}

	sub, err := n.FilterForMode(ctx, cart, ModeSubscription)
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, "Coaching", sub[0].Name)

	pay, err := n.FilterForMode(ctx, cart, ModePayment)
	require.NoError(t, err)
	require.Len(t, pay, 1)
	assert.Equal(t, "Guide", pay[0].Name)

	_, err = n.FilterForMode(ctx, cart[:1], ModeSubscription)
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	_, err = n.FilterForMode(ctx, cart, "bogus")
	assert.True(t, shared.IsValidation(err))
}

// =============================================================================
// Normalize Tests
// =============================================================================

func TestNormalize_SubscriptionScenario(t *testing.T) {
	n := NewNormalizer()

	out, err := n.Normalize(context.Background(), validRequest(CartItem{
		Name: "Coaching", Price: price("49.00"), BillingInterval: IntervalMonth,
	}), "")

	require.NoError(t, err)
	assert.Equal(t, ModeSubscription, out.Mode)
	require.Len(t, out.LineItems, 1)
	assert.Equal(t, int64(4900), out.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, IntervalMonth, out.LineItems[0].PriceData.Recurring.Interval)
	assert.Equal(t, int64(1), out.LineItems[0].Quantity)
	assert.Equal(t, "true", out.Metadata[MetaKeyIsSubscription])
	assert.Equal(t, "false", out.Metadata[MetaKeyIsGift])
	assert.Equal(t, "buyer@example.com", out.CustomerEmail)
}

func TestNormalize_RequiresURLs(t *testing.T) {
	n := NewNormalizer()
	req := validRequest(CartItem{Name: "A", Price: price("1")})
	req.SuccessURL = ""

	_, err := n.Normalize(context.Background(), req, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "successUrl")

	req = validRequest(CartItem{Name: "A", Price: price("1")})
	req.CancelURL = ""
	_, err = n.Normalize(context.Background(), req, "")
	assert.Contains(t, err.Error(), "cancelUrl")
}

func TestNormalize_EmptyCartMakesNoLookup(t *testing.T) {
	lookup := &countingLookup{}
	n := NewNormalizer(WithIntervalLookup(lookup))

	_, err := n.Normalize(context.Background(), validRequest(), ModeSubscription)

	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Zero(t, lookup.calls)
}

func TestNormalize_MixedCartFilterPolicy(t *testing.T) {
	n := NewNormalizer(WithMixedCartPolicy(MixedCartFilter))
	req := validRequest(
		CartItem{Name: "Guide", Price: price("10")},
		CartItem{Name: "Coaching", Price: price("49"), BillingInterval: IntervalMonth},
	)

	t.Run("subscription endpoint keeps recurring items", func(t *testing.T) {
		out, err := n.Normalize(context.Background(), req, ModeSubscription)
		require.NoError(t, err)
		assert.Equal(t, ModeSubscription, out.Mode)
		require.Len(t, out.LineItems, 1)
		assert.Equal(t, "Coaching", out.LineItems[0].PriceData.ProductData.Name)
	})

	t.Run("auto mode falls back to payment", func(t *testing.T) {
		out, err := n.Normalize(context.Background(), req, "")
		require.NoError(t, err)
		assert.Equal(t, ModePayment, out.Mode)
		require.Len(t, out.LineItems, 1)
		assert.Equal(t, "Guide", out.LineItems[0].PriceData.ProductData.Name)
		assert.Equal(t, "false", out.Metadata[MetaKeyIsSubscription])
	})
}

func TestNormalize_MixedCartRejectPolicy(t *testing.T) {
	n := NewNormalizer(WithMixedCartPolicy(MixedCartReject))
	req := validRequest(
		CartItem{Name: "Guide", Price: price("10")},
		CartItem{Name: "Coaching", Price: price("49"), BillingInterval: IntervalMonth},
	)

	_, err := n.Normalize(context.Background(), req, ModeSubscription)
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "separately")
}

func TestNormalize_RequestedModeWithNoMatchingItems(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize(context.Background(), validRequest(CartItem{Name: "Guide", Price: price("10")}), ModeSubscription)

	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "no subscription items")
}

func TestNormalize_CatalogPriceRegardlessOfModeHints(t *testing.T) {
	n := NewNormalizer(WithIntervalLookup(StaticIntervalLookup{"price_abc": IntervalMonth}))

	out, err := n.Normalize(context.Background(), validRequest(CartItem{StripePriceID: "price_abc", Quantity: 2}), ModeSubscription)

	require.NoError(t, err)
	assert.Equal(t, []LineItem{{Price: "price_abc", Quantity: 2}}, out.LineItems)
}

func TestNormalize_GiftMetadata(t *testing.T) {
	n := NewNormalizer()
	req := validRequest(CartItem{Name: "Guide", Price: price("10")})
	req.GiftRecipientEmail = "friend@example.com"
	req.UserID = "user_42"
	req.Metadata = map[string]any{"campaign": "spring", "is_gift": "no"}

	out, err := n.Normalize(context.Background(), req, ModePayment)

	require.NoError(t, err)
	assert.Equal(t, "true", out.Metadata[MetaKeyIsGift])
	assert.Equal(t, "friend@example.com", out.Metadata[MetaKeyGiftRecipientEmail])
	assert.Equal(t, "user_42", out.Metadata[MetaKeyUserID])
	assert.Equal(t, "spring", out.Metadata["campaign"])
}

func TestNewNormalizer_IgnoresInvalidOptions(t *testing.T) {
	n := NewNormalizer(WithCurrency(""), WithMixedCartPolicy("split"))
	assert.Equal(t, "usd", n.Currency())
	assert.Equal(t, MixedCartFilter, n.policy)
}
