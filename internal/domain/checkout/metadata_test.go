package checkout

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachMetadata_FlattensValues(t *testing.T) {
	md, err := AttachMetadata(map[string]any{
		"source":  "instagram",
		"count":   float64(3),
		"ratio":   0.25,
		"vip":     true,
		"skipped": nil,
		"tags":    []any{"a", "b"},
		"nested":  map[string]any{"k": "v"},
	}, MetadataContext{})

	require.NoError(t, err)
	assert.Equal(t, "instagram", md["source"])
	assert.Equal(t, "3", md["count"])
	assert.Equal(t, "0.25", md["ratio"])
	assert.Equal(t, "true", md["vip"])
	assert.Equal(t, `["a","b"]`, md["tags"])
	assert.Equal(t, `{"k":"v"}`, md["nested"])
	assert.NotContains(t, md, "skipped")
}

func TestAttachMetadata_ComputedFieldsWin(t *testing.T) {
	md, err := AttachMetadata(map[string]any{
		MetaKeyIsGift:         "maybe",
		MetaKeyIsSubscription: "maybe",
		MetaKeyUserID:         "spoofed",
	}, MetadataContext{
		GiftRecipientEmail: "friend@example.com",
		UserID:             "user_1",
		IsSubscription:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		MetaKeyIsGift:             "true",
		MetaKeyIsSubscription:     "true",
		MetaKeyGiftRecipientEmail: "friend@example.com",
		MetaKeyUserID:             "user_1",
	}, md)
}

func TestAttachMetadata_CallerCannotSetOrigin(t *testing.T) {
	md, err := AttachMetadata(map[string]any{
		MetaKeyOrigin: OriginElements,
		"plan":        "starter",
	}, MetadataContext{})

	require.NoError(t, err)
	assert.NotContains(t, md, MetaKeyOrigin)
	assert.Equal(t, "starter", md["plan"])

	md, err = AttachMetadata(map[string]any{MetaKeyOrigin: "spoofed"}, MetadataContext{Origin: OriginElements})
	require.NoError(t, err)
	assert.Equal(t, OriginElements, md[MetaKeyOrigin])
}

func TestAttachMetadata_OriginCountsTowardKeyLimit(t *testing.T) {
	base := make(map[string]any)
	for i := 0; i < MaxMetadataKeys-2; i++ {
		base[fmt.Sprintf("k%d", i)] = "v"
	}

	md, err := AttachMetadata(base, MetadataContext{})
	require.NoError(t, err)
	assert.Len(t, md, MaxMetadataKeys)

	_, err = AttachMetadata(base, MetadataContext{Origin: OriginElements})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "at most 50 keys, got 51")
}

func TestAttachMetadata_NilBase(t *testing.T) {
	md, err := AttachMetadata(nil, MetadataContext{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		MetaKeyIsGift:         "false",
		MetaKeyIsSubscription: "false",
	}, md)
}

func TestAttachMetadata_Limits(t *testing.T) {
	t.Run("too many keys", func(t *testing.T) {
		base := make(map[string]any)
		for i := 0; i < MaxMetadataKeys; i++ {
			base[fmt.Sprintf("k%d", i)] = "v"
		}
		_, err := AttachMetadata(base, MetadataContext{})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Contains(t, err.Error(), "at most 50 keys")
	})

	t.Run("key too long", func(t *testing.T) {
		_, err := AttachMetadata(map[string]any{strings.Repeat("k", 41): "v"}, MetadataContext{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 40 characters")
	})

	t.Run("value too long", func(t *testing.T) {
		_, err := AttachMetadata(map[string]any{"note": strings.Repeat("x", 501)}, MetadataContext{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 500 characters")
	})

	t.Run("at the limits", func(t *testing.T) {
		_, err := AttachMetadata(map[string]any{strings.Repeat("k", 40): strings.Repeat("x", 500)}, MetadataContext{})
		assert.NoError(t, err)
	})
}

func TestReadMetadata(t *testing.T) {
	in := MetadataContext{GiftRecipientEmail: "friend@example.com", UserID: "u1", IsSubscription: true}
	md, err := AttachMetadata(nil, in)
	require.NoError(t, err)

	out := ReadMetadata(md)
	assert.Equal(t, in, out)
	assert.True(t, out.IsGift())

	assert.Equal(t, MetadataContext{}, ReadMetadata(nil))
}

func TestChainedIntervalLookup(t *testing.T) {
	ctx := context.Background()
	chain := ChainedIntervalLookup{
		nil,
		StaticIntervalLookup{"price_a": IntervalMonth},
		StaticIntervalLookup{"price_a": IntervalYear, "price_b": IntervalYear},
	}

	interval, found, err := chain.RecurringInterval(ctx, "price_a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, IntervalMonth, interval)

	interval, found, _ = chain.RecurringInterval(ctx, "price_b")
	assert.True(t, found)
	assert.Equal(t, IntervalYear, interval)

	_, found, _ = chain.RecurringInterval(ctx, "price_c")
	assert.False(t, found)
}
