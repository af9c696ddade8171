package billing

import (
	"fmt"
	"strings"

	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
)

// ProviderStripe names Stripe in upstream errors
const ProviderStripe = "stripe"

// StripeConfig holds configuration for the Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx, sk_live_xxx or rk_ restricted keys)
	SecretKey string

	// WebhookSecret is the signing secret for webhook verification (whsec_xxx)
	WebhookSecret string

	// DefaultCurrency is the currency used for inline prices
	DefaultCurrency string

	// SuccessURL and CancelURL are the fallback checkout redirects
	SuccessURL string
	CancelURL  string

	// MaxNetworkRetries is passed to the SDK backend. Zero disables retries.
	MaxNetworkRetries int64
}

// NewStripeConfig maps application configuration to the adapter config
func NewStripeConfig(cfg config.StripeConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey:       cfg.SecretKey,
		WebhookSecret:   cfg.WebhookSecret,
		DefaultCurrency: cfg.DefaultCurrency,
		SuccessURL:      cfg.SuccessURL,
		CancelURL:       cfg.CancelURL,
	}
}

// IsTestMode returns true for test keys
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.SecretKey, "sk_test_") || strings.HasPrefix(c.SecretKey, "rk_test_")
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("stripe: default currency is required")
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("stripe: default currency %q is not an ISO code", c.DefaultCurrency)
	}
	return nil
}

// InitStripeClient installs the API key on the SDK
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(c.MaxNetworkRetries),
	}))
}
