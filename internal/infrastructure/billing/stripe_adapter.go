package billing

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/coupon"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/product"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhookendpoint"
	"go.uber.org/zap"
)

// ErrMissingRedirect is returned when neither the request nor the config
// provide a checkout redirect URL
var ErrMissingRedirect = &shared.ValidationError{
	Field:   "successUrl",
	Message: "success and cancel URLs are required",
}

// StripeAdapter wraps the Stripe API calls the site makes
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// Config returns the adapter configuration
func (a *StripeAdapter) Config() *StripeConfig {
	return a.config
}

func (a *StripeAdapter) log(ctx context.Context) *zap.Logger {
	return logger.Or(ctx, a.logger).Named("stripe")
}

// failed logs a failed call and maps the SDK error
func (a *StripeAdapter) failed(ctx context.Context, op string, err error, fields ...zap.Field) error {
	mapped := upstreamError(op, err)
	a.log(ctx).Error("Stripe call failed", append(fields, zap.String("op", op), zap.Error(mapped))...)
	return mapped
}

// CreateCheckoutSession creates a hosted checkout session from a normalized cart.
// Metadata is attached to the session and to the subscription or payment
// intent it creates, so webhook handlers see it on either object.
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, in *checkout.NormalizedCheckout) (*CheckoutSessionOutput, error) {
	successURL, cancelURL := a.redirects(in.SuccessURL, in.CancelURL)
	if successURL == "" || cancelURL == "" {
		return nil, ErrMissingRedirect
	}

	md := withoutOrigin(in.Metadata)
	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(string(in.Mode)),
		SuccessURL:          stripe.String(successURL),
		CancelURL:           stripe.String(cancelURL),
		LineItems:           toSessionLineItems(in.LineItems),
		Metadata:            md,
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if userID := md[checkout.MetaKeyUserID]; userID != "" {
		params.ClientReferenceID = stripe.String(userID)
	}

	switch in.Mode {
	case checkout.ModeSubscription:
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: maps.Clone(md),
		}
	default:
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: maps.Clone(md),
		}
		if in.CustomerEmail != "" {
			params.PaymentIntentData.ReceiptEmail = stripe.String(in.CustomerEmail)
		}
	}

	a.log(ctx).Debug("Creating checkout session",
		zap.String("mode", string(in.Mode)),
		zap.Int("line_items", len(in.LineItems)))

	s, err := session.New(params)
	if err != nil {
		return nil, a.failed(ctx, "create checkout session", err, zap.String("mode", string(in.Mode)))
	}

	a.log(ctx).Info("Created checkout session",
		zap.String("session_id", s.ID),
		zap.String("mode", string(in.Mode)))

	return &CheckoutSessionOutput{SessionID: s.ID, URL: s.URL}, nil
}

// CreatePriceCheckoutSession creates a hosted checkout session for one unit of a catalog price
func (a *StripeAdapter) CreatePriceCheckoutSession(ctx context.Context, in PriceCheckoutInput) (*CheckoutSessionOutput, error) {
	successURL, cancelURL := a.redirects(in.SuccessURL, in.CancelURL)
	if successURL == "" || cancelURL == "" {
		return nil, ErrMissingRedirect
	}

	mode := checkout.ModePayment
	if in.Recurring {
		mode = checkout.ModeSubscription
	}

	in.Metadata = withSubscriptionFlag(withoutOrigin(in.Metadata), in.Recurring)
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		Metadata: in.Metadata,
	}
	params.Context = ctx
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.Recurring {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: maps.Clone(in.Metadata)}
	} else {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: maps.Clone(in.Metadata)}
	}

	s, err := session.New(params)
	if err != nil {
		return nil, a.failed(ctx, "create checkout session", err, zap.String("price_id", in.PriceID))
	}

	a.log(ctx).Info("Created price checkout session",
		zap.String("session_id", s.ID),
		zap.String("price_id", in.PriceID),
		zap.String("mode", string(mode)))

	return &CheckoutSessionOutput{SessionID: s.ID, URL: s.URL}, nil
}

// GetCheckoutSession retrieves a session
func (a *StripeAdapter) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, a.failed(ctx, "get checkout session", err, zap.String("session_id", sessionID))
	}
	return s, nil
}

// ListSessionLineItems returns what was bought in a checkout session
func (a *StripeAdapter) ListSessionLineItems(ctx context.Context, sessionID string) ([]SessionLineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	var items []SessionLineItem
	iter := session.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		item := SessionLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			AmountTotal: li.AmountTotal,
			Currency:    string(li.Currency),
		}
		if li.Price != nil {
			item.PriceID = li.Price.ID
		}
		items = append(items, item)
	}
	if err := iter.Err(); err != nil {
		return nil, a.failed(ctx, "list session line items", err, zap.String("session_id", sessionID))
	}
	return items, nil
}

// GetPrice retrieves a catalog price with its product
func (a *StripeAdapter) GetPrice(ctx context.Context, priceID string) (*PriceInfo, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	params.AddExpand("product")

	p, err := price.Get(priceID, params)
	if err != nil {
		return nil, a.failed(ctx, "get price", err, zap.String("price_id", priceID))
	}
	return toPriceInfo(p), nil
}

// ListActivePrices lists every active price with its product expanded
func (a *StripeAdapter) ListActivePrices(ctx context.Context) ([]PriceInfo, error) {
	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	params.AddExpand("data.product")

	var prices []PriceInfo
	iter := price.List(params)
	for iter.Next() {
		prices = append(prices, *toPriceInfo(iter.Price()))
	}
	if err := iter.Err(); err != nil {
		return nil, a.failed(ctx, "list prices", err)
	}

	a.log(ctx).Debug("Listed active prices", zap.Int("count", len(prices)))
	return prices, nil
}

// FindPriceByLookupKey returns the active price carrying lookupKey.
// found is false when no such price exists.
func (a *StripeAdapter) FindPriceByLookupKey(ctx context.Context, lookupKey string) (*PriceInfo, bool, error) {
	params := &stripe.PriceListParams{
		Active:     stripe.Bool(true),
		LookupKeys: stripe.StringSlice([]string{lookupKey}),
	}
	params.Context = ctx
	params.AddExpand("data.product")

	iter := price.List(params)
	if iter.Next() {
		return toPriceInfo(iter.Price()), true, nil
	}
	if err := iter.Err(); err != nil {
		return nil, false, a.failed(ctx, "find price", err, zap.String("lookup_key", lookupKey))
	}
	return nil, false, nil
}

// CreateProductWithPrice creates a product and its single price
func (a *StripeAdapter) CreateProductWithPrice(ctx context.Context, in CreateProductPriceInput) (*PriceInfo, error) {
	productParams := &stripe.ProductParams{
		Name: stripe.String(in.Name),
	}
	productParams.Context = ctx
	if in.Description != "" {
		productParams.Description = stripe.String(in.Description)
	}

	prod, err := product.New(productParams)
	if err != nil {
		return nil, a.failed(ctx, "create product", err, zap.String("lookup_key", in.LookupKey))
	}

	currency := in.Currency
	if currency == "" {
		currency = a.config.DefaultCurrency
	}
	priceParams := &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(in.UnitAmount),
		Currency:   stripe.String(currency),
		LookupKey:  stripe.String(in.LookupKey),
	}
	priceParams.Context = ctx
	if in.Interval != "" {
		priceParams.Recurring = &stripe.PriceRecurringParams{
			Interval: stripe.String(in.Interval),
		}
	}

	p, err := price.New(priceParams)
	if err != nil {
		return nil, a.failed(ctx, "create price", err, zap.String("product_id", prod.ID))
	}
	p.Product = prod

	a.log(ctx).Info("Created product and price",
		zap.String("product_id", prod.ID),
		zap.String("price_id", p.ID),
		zap.String("lookup_key", in.LookupKey))

	return toPriceInfo(p), nil
}

// CreateSubscription creates an incomplete subscription whose first invoice
// is confirmed client side
func (a *StripeAdapter) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (*CreateSubscriptionOutput, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(in.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(in.PriceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		Metadata: withSubscriptionFlag(withoutOrigin(in.Metadata), true),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := subscription.New(params)
	if err != nil {
		return nil, a.failed(ctx, "create subscription", err,
			zap.String("customer_id", in.CustomerID),
			zap.String("price_id", in.PriceID))
	}

	out := &CreateSubscriptionOutput{
		SubscriptionID: sub.ID,
		CustomerID:     in.CustomerID,
		Status:         string(sub.Status),
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		out.CustomerID = sub.Customer.ID
	}
	if sub.LatestInvoice != nil {
		out.LatestInvoiceID = sub.LatestInvoice.ID
		if sub.LatestInvoice.PaymentIntent != nil {
			out.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
		}
	}

	a.log(ctx).Info("Created subscription",
		zap.String("subscription_id", sub.ID),
		zap.String("status", out.Status))

	return out, nil
}

// CreatePaymentIntent creates a one-time PaymentIntent with automatic payment methods
func (a *StripeAdapter) CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntentOutput, error) {
	currency := in.Currency
	if currency == "" {
		currency = a.config.DefaultCurrency
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: withSubscriptionFlag(in.Metadata, false),
	}
	params.Metadata[MetaKeyOrigin] = OriginElements
	params.Context = ctx
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, a.failed(ctx, "create payment intent", err, zap.Int64("amount", in.Amount))
	}

	a.log(ctx).Info("Created payment intent",
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", in.Amount),
		zap.String("currency", currency))

	return &PaymentIntentOutput{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Status:          string(pi.Status),
	}, nil
}

// CreateCoupon creates a coupon
func (a *StripeAdapter) CreateCoupon(ctx context.Context, in CouponInput) (*Coupon, error) {
	params := &stripe.CouponParams{
		Duration: stripe.String(in.Duration),
	}
	params.Context = ctx
	if in.ID != "" {
		params.ID = stripe.String(in.ID)
	}
	if in.Name != "" {
		params.Name = stripe.String(in.Name)
	}
	if in.PercentOff > 0 {
		params.PercentOff = stripe.Float64(in.PercentOff)
	}
	if in.AmountOff > 0 {
		params.AmountOff = stripe.Int64(in.AmountOff)
		params.Currency = stripe.String(in.Currency)
	}
	if in.DurationInMonths > 0 {
		params.DurationInMonths = stripe.Int64(in.DurationInMonths)
	}
	if in.MaxRedemptions > 0 {
		params.MaxRedemptions = stripe.Int64(in.MaxRedemptions)
	}

	c, err := coupon.New(params)
	if err != nil {
		return nil, a.failed(ctx, "create coupon", err)
	}

	a.log(ctx).Info("Created coupon", zap.String("coupon_id", c.ID))
	return toCoupon(c), nil
}

// ListCoupons returns up to limit coupons, newest first
func (a *StripeAdapter) ListCoupons(ctx context.Context, limit int) ([]Coupon, error) {
	params := &stripe.CouponListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	coupons := make([]Coupon, 0, limit)
	iter := coupon.List(params)
	for len(coupons) < limit && iter.Next() {
		coupons = append(coupons, *toCoupon(iter.Coupon()))
	}
	if err := iter.Err(); err != nil {
		return nil, a.failed(ctx, "list coupons", err)
	}
	return coupons, nil
}

// DeleteCoupon deletes a coupon. Existing discounts keep applying.
func (a *StripeAdapter) DeleteCoupon(ctx context.Context, couponID string) error {
	params := &stripe.CouponParams{}
	params.Context = ctx
	if _, err := coupon.Del(couponID, params); err != nil {
		return a.failed(ctx, "delete coupon", err, zap.String("coupon_id", couponID))
	}
	a.log(ctx).Info("Deleted coupon", zap.String("coupon_id", couponID))
	return nil
}

// ListWebhookEndpoints lists the registered webhook endpoints
func (a *StripeAdapter) ListWebhookEndpoints(ctx context.Context) ([]WebhookEndpoint, error) {
	params := &stripe.WebhookEndpointListParams{}
	params.Context = ctx

	var endpoints []WebhookEndpoint
	iter := webhookendpoint.List(params)
	for iter.Next() {
		endpoints = append(endpoints, toWebhookEndpoint(iter.WebhookEndpoint()))
	}
	if err := iter.Err(); err != nil {
		return nil, a.failed(ctx, "list webhook endpoints", err)
	}
	return endpoints, nil
}

// CreateWebhookEndpoint registers url for events. The returned endpoint
// carries its signing secret.
func (a *StripeAdapter) CreateWebhookEndpoint(ctx context.Context, url string, events []string) (*WebhookEndpoint, error) {
	params := &stripe.WebhookEndpointParams{
		URL:           stripe.String(url),
		EnabledEvents: stripe.StringSlice(events),
	}
	params.Context = ctx

	we, err := webhookendpoint.New(params)
	if err != nil {
		return nil, a.failed(ctx, "create webhook endpoint", err, zap.String("url", url))
	}
	out := toWebhookEndpoint(we)
	return &out, nil
}

// DeleteWebhookEndpoint removes a webhook endpoint
func (a *StripeAdapter) DeleteWebhookEndpoint(ctx context.Context, endpointID string) error {
	params := &stripe.WebhookEndpointParams{}
	params.Context = ctx
	if _, err := webhookendpoint.Del(endpointID, params); err != nil {
		return a.failed(ctx, "delete webhook endpoint", err, zap.String("endpoint_id", endpointID))
	}
	return nil
}

func (a *StripeAdapter) redirects(success, cancel string) (string, string) {
	if success == "" {
		success = a.config.SuccessURL
	}
	if cancel == "" {
		cancel = a.config.CancelURL
	}
	return success, cancel
}

// withoutOrigin copies md without MetaKeyOrigin. Intents owned by a session
// or an invoice are recorded by their own events.
func withoutOrigin(md map[string]string) map[string]string {
	out := maps.Clone(md)
	delete(out, MetaKeyOrigin)
	return out
}

func withSubscriptionFlag(md map[string]string, recurring bool) map[string]string {
	out := make(map[string]string, len(md)+1)
	maps.Copy(out, md)
	out[checkout.MetaKeyIsSubscription] = fmt.Sprintf("%t", recurring)
	return out
}

func toSessionLineItems(items []checkout.LineItem) []*stripe.CheckoutSessionLineItemParams {
	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, li := range items {
		p := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(li.Quantity),
		}
		if li.IsCatalogPrice() {
			p.Price = stripe.String(li.Price)
			out = append(out, p)
			continue
		}
		pd := li.PriceData
		p.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(pd.Currency),
			UnitAmount: stripe.Int64(pd.UnitAmount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(pd.ProductData.Name),
			},
		}
		if pd.ProductData.Description != "" {
			p.PriceData.ProductData.Description = stripe.String(pd.ProductData.Description)
		}
		if pd.Recurring != nil {
			p.PriceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval: stripe.String(string(pd.Recurring.Interval)),
			}
		}
		out = append(out, p)
	}
	return out
}

func toPriceInfo(p *stripe.Price) *PriceInfo {
	info := &PriceInfo{
		ID:         p.ID,
		Active:     p.Active,
		Currency:   string(p.Currency),
		UnitAmount: p.UnitAmount,
		LookupKey:  p.LookupKey,
	}
	if p.Recurring != nil {
		info.Interval = string(p.Recurring.Interval)
	}
	if p.Product != nil {
		info.Product = &ProductInfo{
			ID:          p.Product.ID,
			Name:        p.Product.Name,
			Description: p.Product.Description,
			Images:      p.Product.Images,
			Metadata:    p.Product.Metadata,
			Active:      p.Product.Active,
		}
	}
	return info
}

func toCoupon(c *stripe.Coupon) *Coupon {
	return &Coupon{
		ID:               c.ID,
		Name:             c.Name,
		PercentOff:       c.PercentOff,
		AmountOff:        c.AmountOff,
		Currency:         string(c.Currency),
		Duration:         string(c.Duration),
		DurationInMonths: c.DurationInMonths,
		MaxRedemptions:   c.MaxRedemptions,
		TimesRedeemed:    c.TimesRedeemed,
		Valid:            c.Valid,
		CreatedAt:        time.Unix(c.Created, 0).UTC(),
	}
}

func toWebhookEndpoint(we *stripe.WebhookEndpoint) WebhookEndpoint {
	return WebhookEndpoint{
		ID:            we.ID,
		URL:           we.URL,
		Status:        we.Status,
		EnabledEvents: we.EnabledEvents,
		Secret:        we.Secret,
	}
}
