// Package billing processes provider webhooks: it records purchases and
// subscription state, archives receipts and sends the resulting emails.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitcoach/backend/internal/domain/purchase"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
	"github.com/fitcoach/backend/internal/infrastructure/receipt"
	"github.com/fitcoach/backend/internal/infrastructure/storage"
	"github.com/fitcoach/backend/internal/infrastructure/telemetry"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Result messages
const (
	MessageProcessed        = "Event processed"
	MessageAlreadyProcessed = "Event already processed"
	MessageNotHandled       = "Event type not handled"
	MessageHandlerFailed    = "Event processing failed"
)

// ErrInvalidSignature is returned when the payload signature does not verify
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// LineItemSource lists the purchased lines of a completed checkout session
type LineItemSource interface {
	ListSessionLineItems(ctx context.Context, sessionID string) ([]billing.SessionLineItem, error)
}

// WebhookService handles Stripe webhook events
type WebhookService struct {
	secret         string
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	purchases      purchase.PurchaseRepository
	subscriptions  purchase.SubscriptionRepository
	lineItems      LineItemSource
	receipts       *receipt.Renderer
	archive        storage.ReceiptArchive
	archivePrefix  string
	mailer         mailer.Sender
	locale         language.Tag
	metrics        *telemetry.PaymentMetrics
	now            func() time.Time
	logger         *zap.Logger
}

// WebhookServiceConfig contains the dependencies of WebhookService.
// Archive and Metrics are optional.
type WebhookServiceConfig struct {
	WebhookSecret  string
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	Purchases      purchase.PurchaseRepository
	Subscriptions  purchase.SubscriptionRepository
	LineItems      LineItemSource
	Receipts       *receipt.Renderer
	Archive        storage.ReceiptArchive
	ArchivePrefix  string
	Mailer         mailer.Sender
	Locale         language.Tag
	Metrics        *telemetry.PaymentMetrics
	Logger         *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	sender := cfg.Mailer
	if sender == nil {
		sender = mailer.NewDisabled(log)
	}
	renderer := cfg.Receipts
	if renderer == nil {
		renderer = receipt.NewRenderer("FitCoach")
	}
	locale := cfg.Locale
	if locale == language.Und {
		locale = language.English
	}
	return &WebhookService{
		secret:         cfg.WebhookSecret,
		idempotency:    cfg.Idempotency,
		idempotencyTTL: ttl,
		purchases:      cfg.Purchases,
		subscriptions:  cfg.Subscriptions,
		lineItems:      cfg.LineItems,
		receipts:       renderer,
		archive:        cfg.Archive,
		archivePrefix:  cfg.ArchivePrefix,
		mailer:         sender,
		locale:         locale,
		metrics:        cfg.Metrics,
		now:            time.Now,
		logger:         log,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	Received  bool   `json:"received"`
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and handles a webhook delivery. Only a bad
// signature is returned as an error; handler failures are reported in the
// result so the provider does not keep retrying.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	log := logger.Or(ctx, s.logger)

	event, err := webhook.ConstructEvent(payload, signature, s.secret)
	if err != nil {
		log.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return s.HandleEvent(ctx, event), nil
}

// HandleEvent dispatches an already verified event
func (s *WebhookService) HandleEvent(ctx context.Context, event stripe.Event) *WebhookResult {
	start := time.Now()
	log := logger.Or(ctx, s.logger).With(
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
	ctx = logger.WithContext(ctx, log)

	result := &WebhookResult{
		Received:  true,
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	claimed, err := s.claim(ctx, event.ID)
	if err != nil {
		// without the store there is no dedupe; a replayed purchase upserts
		log.Warn("Idempotency check failed, processing anyway", zap.Error(err))
		claimed = true
	}
	if !claimed {
		log.Info("Duplicate webhook event skipped")
		result.Processed = true
		result.Message = MessageAlreadyProcessed
		s.metrics.RecordWebhook(ctx, result.EventType, telemetry.OutcomeDuplicate, time.Since(start))
		return result
	}

	handler, handled := s.handlerFor(event.Type)
	if !handled {
		log.Debug("Unhandled webhook event type")
		result.Message = MessageNotHandled
		s.metrics.RecordWebhook(ctx, result.EventType, telemetry.OutcomeIgnored, time.Since(start))
		return result
	}

	if err := handler(ctx, event); err != nil {
		log.Error("Failed to process webhook event", zap.Error(err))
		s.release(ctx, event.ID)
		result.Message = MessageHandlerFailed
		s.metrics.RecordWebhook(ctx, result.EventType, telemetry.OutcomeError, time.Since(start))
		return result
	}

	log.Info("Webhook event processed", zap.Duration("elapsed", time.Since(start)))
	result.Processed = true
	result.Message = MessageProcessed
	s.metrics.RecordWebhook(ctx, result.EventType, telemetry.OutcomeSuccess, time.Since(start))
	return result
}

type eventHandler func(ctx context.Context, event stripe.Event) error

func (s *WebhookService) handlerFor(t stripe.EventType) (eventHandler, bool) {
	switch t {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return s.handleCheckoutCompleted, true
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		return s.handleCheckoutPaymentFailed, true
	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		return s.handleSubscriptionChanged, true
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionDeleted, true
	case stripe.EventTypeInvoicePaid:
		return s.handleInvoicePaid, true
	case stripe.EventTypeInvoicePaymentFailed:
		return s.handleInvoicePaymentFailed, true
	case stripe.EventTypePaymentIntentSucceeded:
		return s.handlePaymentIntentSucceeded, true
	}
	return nil, false
}

func (s *WebhookService) claim(ctx context.Context, eventID string) (bool, error) {
	if s.idempotency == nil || eventID == "" {
		return true, nil
	}
	return s.idempotency.MarkProcessed(ctx, eventID, s.idempotencyTTL)
}

func (s *WebhookService) release(ctx context.Context, eventID string) {
	if s.idempotency == nil || eventID == "" {
		return
	}
	if err := s.idempotency.Release(ctx, eventID); err != nil {
		logger.Or(ctx, s.logger).Warn("Failed to release idempotency mark",
			zap.String("event_id", eventID), zap.Error(err))
	}
}

func decode(event stripe.Event, dest any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("event %s has no data", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", event.Type, err)
	}
	return nil
}
