package purchase

import (
	"strings"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurchase(t *testing.T) {
	t.Run("creates pending purchase with reference", func(t *testing.T) {
		p, err := NewPurchase(SourceCheckoutSession, "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, p.Status)
		assert.Equal(t, "cs_test_1", p.ExternalID)
		assert.True(t, strings.HasPrefix(p.Reference, "FC-"))
		assert.Equal(t, "usd", p.Currency)
		assert.NotEqual(t, p.Reference, NewReference())
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		_, err := NewPurchase("invoice", "in_1")
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects empty external id", func(t *testing.T) {
		_, err := NewPurchase(SourcePaymentIntent, " ")
		assert.True(t, shared.IsValidation(err))
	})
}

func TestPurchase_ApplyMetadata(t *testing.T) {
	p, err := NewPurchase(SourceCheckoutSession, "cs_1")
	require.NoError(t, err)

	md, err := checkout.AttachMetadata(map[string]any{"campaign": "spring"}, checkout.MetadataContext{
		GiftRecipientEmail: "friend@example.com",
		UserID:             "u1",
		IsSubscription:     true,
	})
	require.NoError(t, err)

	p.ApplyMetadata(md)

	assert.True(t, p.IsGift)
	assert.Equal(t, "friend@example.com", p.GiftRecipientEmail)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, checkout.ModeSubscription, p.Mode)
	assert.Equal(t, "spring", p.Metadata["campaign"])

	md["campaign"] = "changed"
	assert.Equal(t, "spring", p.Metadata["campaign"])
}

func TestPurchase_MarkPaidAndTotal(t *testing.T) {
	p, err := NewPurchase(SourcePaymentIntent, "pi_1")
	require.NoError(t, err)

	p.MarkPaid(4900, "USD")

	assert.Equal(t, StatusPaid, p.Status)
	total, err := p.Total()
	require.NoError(t, err)
	assert.Equal(t, "49.00 USD", total.String())
}

func TestPurchase_MarkPaymentFailed(t *testing.T) {
	p, err := NewPurchase(SourceCheckoutSession, "cs_1")
	require.NoError(t, err)

	p.MarkPaymentFailed()
	assert.Equal(t, StatusUnpaid, p.Status)

	paid, err := NewPurchase(SourceCheckoutSession, "cs_2")
	require.NoError(t, err)
	paid.MarkPaid(4900, "usd")
	paid.MarkPaymentFailed()
	assert.Equal(t, StatusPaid, paid.Status)
}

func TestSubscription_Sync(t *testing.T) {
	s, err := NewSubscription("sub_1", "cus_1")
	require.NoError(t, err)
	assert.Equal(t, SubscriptionIncomplete, s.Status)

	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	s.Sync(SyncState{Status: "active", PriceID: "price_m", CurrentPeriodEnd: end.Unix(), CancelAtPeriodEnd: true})

	assert.Equal(t, SubscriptionActive, s.Status)
	assert.Equal(t, "price_m", s.PriceID)
	require.NotNil(t, s.CurrentPeriodEnd)
	assert.True(t, end.Equal(*s.CurrentPeriodEnd))
	assert.True(t, s.CancelAtPeriodEnd)
	assert.Nil(t, s.CanceledAt)

	s.MarkPastDue()
	assert.Equal(t, SubscriptionPastDue, s.Status)
	assert.True(t, s.Status.IsLive())

	s.MarkCanceled(end)
	assert.Equal(t, SubscriptionCanceled, s.Status)
	assert.False(t, s.Status.IsLive())
	require.NotNil(t, s.CanceledAt)
}

func TestParseSubscriptionStatus(t *testing.T) {
	assert.Equal(t, SubscriptionTrialing, ParseSubscriptionStatus("trialing"))
	assert.Equal(t, SubscriptionPastDue, ParseSubscriptionStatus("PAST_DUE"))
	assert.Equal(t, SubscriptionIncomplete, ParseSubscriptionStatus("mystery"))
}

func TestNewSubscription_RequiresID(t *testing.T) {
	_, err := NewSubscription("", "cus_1")
	assert.True(t, shared.IsValidation(err))
}
