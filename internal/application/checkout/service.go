// Package checkout turns storefront carts into Stripe checkout sessions,
// subscriptions and payment intents.
package checkout

import (
	"context"
	"strings"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// UIMode selects how a payment intent request is fulfilled
type UIMode string

const (
	// UIModeElements returns a client secret for an embedded payment form
	UIModeElements UIMode = "elements"
	// UIModeHosted returns a hosted checkout session
	UIModeHosted UIMode = "hosted"
)

// ParseUIMode validates s, returning fallback when s is empty
func ParseUIMode(s string, fallback UIMode) (UIMode, error) {
	switch m := UIMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return fallback, nil
	case UIModeElements, UIModeHosted:
		return m, nil
	default:
		return "", shared.NewValidationError("uiMode", "must be elements or hosted")
	}
}

// Gateway is the slice of the payment provider the checkout flows use
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in *checkout.NormalizedCheckout) (*billing.CheckoutSessionOutput, error)
	CreatePriceCheckoutSession(ctx context.Context, in billing.PriceCheckoutInput) (*billing.CheckoutSessionOutput, error)
	GetPrice(ctx context.Context, priceID string) (*billing.PriceInfo, error)
	CreateSubscription(ctx context.Context, in billing.CreateSubscriptionInput) (*billing.CreateSubscriptionOutput, error)
	CreatePaymentIntent(ctx context.Context, in billing.CreatePaymentIntentInput) (*billing.PaymentIntentOutput, error)
}

// Service runs the checkout flows
type Service struct {
	normalizer    *checkout.Normalizer
	gateway       Gateway
	defaultUIMode UIMode
	successURL    string
	cancelURL     string
	metrics       *telemetry.PaymentMetrics
	logger        *zap.Logger
}

// Option configures Service
type Option func(*Service)

// WithDefaultUIMode sets the payment intent variant used when a request names none
func WithDefaultUIMode(mode UIMode) Option {
	return func(s *Service) {
		if mode == UIModeElements || mode == UIModeHosted {
			s.defaultUIMode = mode
		}
	}
}

// WithDefaultRedirects sets the redirects used when a request omits them
func WithDefaultRedirects(successURL, cancelURL string) Option {
	return func(s *Service) {
		s.successURL = successURL
		s.cancelURL = cancelURL
	}
}

// WithMetrics records checkout outcomes
func WithMetrics(m *telemetry.PaymentMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a checkout service
func NewService(normalizer *checkout.Normalizer, gateway Gateway, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		normalizer:    normalizer,
		gateway:       gateway,
		defaultUIMode: UIModeElements,
		logger:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckoutSession creates a hosted session, choosing the mode from the cart
func (s *Service) CreateCheckoutSession(ctx context.Context, req checkout.CheckoutRequest) (*SessionResult, error) {
	return s.createSession(ctx, req, "")
}

// CreateSubscription creates a hosted subscription session. One-time items
// are dropped or rejected by the mixed cart policy.
func (s *Service) CreateSubscription(ctx context.Context, req checkout.CheckoutRequest) (*SessionResult, error) {
	return s.createSession(ctx, req, checkout.ModeSubscription)
}

func (s *Service) createSession(ctx context.Context, req checkout.CheckoutRequest, requested checkout.CheckoutMode) (result *SessionResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.create_session")
	mode := string(requested)
	defer func() {
		s.metrics.RecordCheckout(ctx, mode, err)
		telemetry.EndSpan(span, err)
	}()

	if req.SuccessURL == "" {
		req.SuccessURL = s.successURL
	}
	if req.CancelURL == "" {
		req.CancelURL = s.cancelURL
	}

	normalized, err := s.normalizer.Normalize(ctx, req, requested)
	if err != nil {
		return nil, err
	}
	mode = string(normalized.Mode)
	span.SetAttributes(telemetry.AttrCheckoutMode.String(mode))

	out, err := s.gateway.CreateCheckoutSession(ctx, normalized)
	if err != nil {
		return nil, err
	}

	logger.Or(ctx, s.logger).Info("Checkout session created",
		zap.String("session_id", out.SessionID),
		zap.String("mode", mode),
		zap.Int("line_items", len(normalized.LineItems)),
		logger.Email("customer_email", normalized.CustomerEmail),
	)
	return &SessionResult{SessionID: out.SessionID, URL: out.URL, Mode: normalized.Mode}, nil
}

// CreatePaymentIntent fulfils a single price purchase as an embedded
// payment or a hosted session
func (s *Service) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (result *PaymentIntentResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.create_payment_intent")
	variant := string(s.defaultUIMode)
	defer func() {
		s.metrics.RecordPaymentIntent(ctx, variant, err)
		telemetry.EndSpan(span, err)
	}()

	mode, err := ParseUIMode(req.UIMode, s.defaultUIMode)
	if err != nil {
		return nil, err
	}
	variant = string(mode)

	priceID := strings.TrimSpace(req.PriceID)
	if priceID == "" {
		return nil, shared.NewValidationError("priceId", "is required")
	}

	if mode == UIModeHosted {
		return s.hostedPayment(ctx, req, priceID)
	}
	return s.elementsPayment(ctx, req, priceID)
}

func (s *Service) elementsPayment(ctx context.Context, req PaymentIntentRequest, priceID string) (*PaymentIntentResult, error) {
	price, err := s.gateway.GetPrice(ctx, priceID)
	if err != nil {
		return nil, err
	}
	recurring := price.IsRecurring()
	if recurring && strings.TrimSpace(req.CustomerID) == "" {
		return nil, shared.NewValidationError("customerId", "is required for recurring prices")
	}

	mc := checkout.MetadataContext{
		UserID:         req.UserID,
		IsSubscription: recurring,
	}
	if !recurring {
		mc.Origin = checkout.OriginElements
	}
	md, err := checkout.AttachMetadata(req.Metadata, mc)
	if err != nil {
		return nil, err
	}

	log := logger.Or(ctx, s.logger)
	if recurring {
		sub, err := s.gateway.CreateSubscription(ctx, billing.CreateSubscriptionInput{
			CustomerID: req.CustomerID,
			PriceID:    priceID,
			Metadata:   md,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Subscription payment created",
			zap.String("subscription_id", sub.SubscriptionID),
			zap.String("price_id", priceID))
		return &PaymentIntentResult{
			UIMode:         UIModeElements,
			ClientSecret:   sub.ClientSecret,
			SubscriptionID: sub.SubscriptionID,
		}, nil
	}

	pi, err := s.gateway.CreatePaymentIntent(ctx, billing.CreatePaymentIntentInput{
		Amount:     price.UnitAmount,
		Currency:   price.Currency,
		CustomerID: req.CustomerID,
		Metadata:   md,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Payment intent created",
		zap.String("payment_intent_id", pi.PaymentIntentID),
		zap.String("price_id", priceID))
	return &PaymentIntentResult{
		UIMode:          UIModeElements,
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.PaymentIntentID,
	}, nil
}

func (s *Service) hostedPayment(ctx context.Context, req PaymentIntentRequest, priceID string) (*PaymentIntentResult, error) {
	if req.SuccessURL == "" {
		req.SuccessURL = s.successURL
	}
	if req.CancelURL == "" {
		req.CancelURL = s.cancelURL
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		return nil, billing.ErrMissingRedirect
	}

	price, err := s.gateway.GetPrice(ctx, priceID)
	if err != nil {
		return nil, err
	}

	md, err := checkout.AttachMetadata(req.Metadata, checkout.MetadataContext{
		UserID:         req.UserID,
		IsSubscription: price.IsRecurring(),
	})
	if err != nil {
		return nil, err
	}

	out, err := s.gateway.CreatePriceCheckoutSession(ctx, billing.PriceCheckoutInput{
		PriceID:    priceID,
		Recurring:  price.IsRecurring(),
		CustomerID: req.CustomerID,
		Metadata:   md,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	logger.Or(ctx, s.logger).Info("Hosted payment session created",
		zap.String("session_id", out.SessionID),
		zap.String("price_id", priceID))
	return &PaymentIntentResult{UIMode: UIModeHosted, SessionID: out.SessionID, URL: out.URL}, nil
}
