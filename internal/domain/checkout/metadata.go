package checkout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/fitcoach/backend/internal/domain/shared"
)

// Metadata keys written on every session.
const (
	MetaKeyIsGift             = "is_gift"
	MetaKeyIsSubscription     = "isSubscription"
	MetaKeyGiftRecipientEmail = "giftRecipientEmail"
	MetaKeyUserID             = "userId"
)

// MetaKeyOrigin is server-owned: it marks payment intents created directly by
// the elements flow, and caller metadata never sets it.
const (
	MetaKeyOrigin  = "origin"
	OriginElements = "elements"
)

// Provider limits on the metadata channel.
const (
	MaxMetadataKeys        = 50
	MaxMetadataKeyLength   = 40
	MaxMetadataValueLength = 500
)

// MetadataContext holds the request fields that become computed metadata.
type MetadataContext struct {
	GiftRecipientEmail string
	UserID             string
	IsSubscription     bool
	// Origin is written under MetaKeyOrigin when set
	Origin string
}

// IsGift returns true when a gift recipient is set.
func (m MetadataContext) IsGift() bool {
	return m.GiftRecipientEmail != ""
}

// AttachMetadata merges caller metadata with the computed fields into a flat
// string map. Computed fields win over caller keys of the same name, and a
// caller MetaKeyOrigin is dropped.
//
// Strings are kept, numbers and booleans are formatted, nested values are
// JSON-encoded and nil values are dropped.
func AttachMetadata(base map[string]any, mc MetadataContext) (map[string]string, error) {
	out := make(map[string]string, len(base)+4)
	for k, v := range base {
		if k == MetaKeyOrigin {
			continue
		}
		s, ok, err := flatten(v)
		if err != nil {
			return nil, shared.NewValidationError("metadata."+k, "cannot be encoded: %v", err)
		}
		if ok {
			out[k] = s
		}
	}

	out[MetaKeyIsGift] = strconv.FormatBool(mc.IsGift())
	out[MetaKeyIsSubscription] = strconv.FormatBool(mc.IsSubscription)
	if mc.GiftRecipientEmail != "" {
		out[MetaKeyGiftRecipientEmail] = mc.GiftRecipientEmail
	}
	if mc.UserID != "" {
		out[MetaKeyUserID] = mc.UserID
	}
	if mc.Origin != "" {
		out[MetaKeyOrigin] = mc.Origin
	}

	if err := ValidateMetadata(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateMetadata enforces the provider's key count and length limits.
func ValidateMetadata(md map[string]string) error {
	if len(md) > MaxMetadataKeys {
		return shared.NewValidationError("metadata", "must have at most %d keys, got %d", MaxMetadataKeys, len(md))
	}
	for k, v := range md {
		if k == "" {
			return shared.NewValidationError("metadata", "keys must not be empty")
		}
		if utf8.RuneCountInString(k) > MaxMetadataKeyLength {
			return shared.NewValidationError("metadata", "key %q exceeds %d characters", k, MaxMetadataKeyLength)
		}
		if utf8.RuneCountInString(v) > MaxMetadataValueLength {
			return shared.NewValidationError("metadata."+k, "value exceeds %d characters", MaxMetadataValueLength)
		}
	}
	return nil
}

// ReadMetadata recovers the computed fields from session metadata.
func ReadMetadata(md map[string]string) MetadataContext {
	isSub, _ := strconv.ParseBool(md[MetaKeyIsSubscription])
	return MetadataContext{
		GiftRecipientEmail: md[MetaKeyGiftRecipientEmail],
		UserID:             md[MetaKeyUserID],
		IsSubscription:     isSub,
	}
}

func flatten(v any) (string, bool, error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true, nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true, nil
	case json.Number:
		return t.String(), true, nil
	case fmt.Stringer:
		return t.String(), true, nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
}
