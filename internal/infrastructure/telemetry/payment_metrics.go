package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for payment instruments
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeRejected  = "upstream_rejected"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
)

// PaymentMetrics counts checkout, payment intent and webhook activity
type PaymentMetrics struct {
	checkoutSessions *Counter
	paymentIntents   *Counter
	webhookEvents    *Counter
	webhookDuration  *Histogram
}

// NewPaymentMetrics registers the payment instruments on meter
func NewPaymentMetrics(meter metric.Meter) (*PaymentMetrics, error) {
	m := &PaymentMetrics{}
	var err error

	if m.checkoutSessions, err = NewCounter(meter, "fitcoach.checkout.sessions",
		"Checkout session and subscription creation attempts", "{request}"); err != nil {
		return nil, err
	}
	if m.paymentIntents, err = NewCounter(meter, "fitcoach.payment_intents",
		"Payment intent creation attempts", "{request}"); err != nil {
		return nil, err
	}
	if m.webhookEvents, err = NewCounter(meter, "fitcoach.webhook.events",
		"Stripe webhook events received", "{event}"); err != nil {
		return nil, err
	}
	if m.webhookDuration, err = NewHistogram(meter, "fitcoach.webhook.duration",
		"Webhook event handling time", "s", HTTPDurationBuckets); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCheckout counts a checkout attempt in mode
func (m *PaymentMetrics) RecordCheckout(ctx context.Context, mode string, err error) {
	if m == nil {
		return
	}
	m.checkoutSessions.Inc(ctx, AttrCheckoutMode.String(mode), AttrOutcome.String(OutcomeOf(err)))
}

// RecordPaymentIntent counts a payment intent attempt
func (m *PaymentMetrics) RecordPaymentIntent(ctx context.Context, uiMode string, err error) {
	if m == nil {
		return
	}
	m.paymentIntents.Inc(ctx, AttrUIMode.String(uiMode), AttrOutcome.String(OutcomeOf(err)))
}

// RecordWebhook counts a handled event and its processing time
func (m *PaymentMetrics) RecordWebhook(ctx context.Context, eventType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrEventType.String(eventType), AttrOutcome.String(outcome)}
	m.webhookEvents.Inc(ctx, attrs...)
	m.webhookDuration.RecordDuration(ctx, elapsed, attrs...)
}

// OutcomeOf maps an operation error to an outcome label
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if shared.IsValidation(err) {
		return OutcomeInvalid
	}
	var ue *shared.UpstreamError
	if errors.As(err, &ue) && ue.Rejected {
		return OutcomeRejected
	}
	return OutcomeError
}
