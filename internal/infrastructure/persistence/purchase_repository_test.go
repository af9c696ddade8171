package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/purchase"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPurchaseRepository_SaveAndFind(t *testing.T) {
	repo := NewGormPurchaseRepository(newTestDB(t))
	ctx := context.Background()

	p, err := purchase.NewPurchase(purchase.SourceCheckoutSession, "cs_test_1")
	require.NoError(t, err)
	p.CustomerEmail = "buyer@example.com"
	p.ApplyMetadata(map[string]string{
		checkout.MetaKeyIsGift:             "true",
		checkout.MetaKeyGiftRecipientEmail: "friend@example.com",
	})
	p.MarkPaid(4900, "EUR")

	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.FindByExternalID(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Reference, got.Reference)
	assert.Equal(t, purchase.StatusPaid, got.Status)
	assert.Equal(t, int64(4900), got.AmountTotal)
	assert.Equal(t, "eur", got.Currency)
	assert.True(t, got.IsGift)
	assert.Equal(t, "friend@example.com", got.GiftRecipientEmail)
	assert.Equal(t, "true", got.Metadata[checkout.MetaKeyIsGift])

	byRef, err := repo.FindByReference(ctx, p.Reference)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byRef.ID)
}

func TestGormPurchaseRepository_SaveUpsertsByExternalID(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormPurchaseRepository(db)
	ctx := context.Background()

	first, err := purchase.NewPurchase(purchase.SourcePaymentIntent, "pi_123")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	// a replayed event builds a fresh entity for the same provider object
	replay, err := purchase.NewPurchase(purchase.SourcePaymentIntent, "pi_123")
	require.NoError(t, err)
	replay.MarkPaid(1500, "usd")
	replay.UpdatedAt = time.Now().UTC().Add(time.Minute)
	require.NoError(t, repo.Save(ctx, replay))

	var count int64
	require.NoError(t, db.Table("purchases").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.FindByExternalID(ctx, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "row identity is kept")
	assert.Equal(t, first.Reference, got.Reference, "reference is never rewritten")
	assert.Equal(t, purchase.StatusPaid, got.Status)
	assert.Equal(t, int64(1500), got.AmountTotal)
}

func TestGormPurchaseRepository_NotFound(t *testing.T) {
	repo := NewGormPurchaseRepository(newTestDB(t))

	_, err := repo.FindByExternalID(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSubscriptionRepository(t *testing.T) {
	repo := NewGormSubscriptionRepository(newTestDB(t))
	ctx := context.Background()

	sub, err := purchase.NewSubscription("sub_1", "cus_1")
	require.NoError(t, err)
	sub.Sync(purchase.SyncState{Status: "active", PriceID: "price_m", CurrentPeriodEnd: 1767225600})
	require.NoError(t, repo.Save(ctx, sub))

	got, err := repo.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, purchase.SubscriptionActive, got.Status)
	assert.Equal(t, "price_m", got.PriceID)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.Equal(t, int64(1767225600), got.CurrentPeriodEnd.Unix())

	got.MarkCanceled(time.Unix(1767225700, 0))
	require.NoError(t, repo.Save(ctx, got))

	again, err := repo.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, purchase.SubscriptionCanceled, again.Status)
	require.NotNil(t, again.CanceledAt)

	_, err = repo.FindByStripeID(ctx, "sub_missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
