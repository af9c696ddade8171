package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/purchase"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// handleCheckoutCompleted handles checkout.session.completed events and
// checkout.session.async_payment_succeeded, where a delayed payment settles
func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := decode(event, &sess); err != nil {
		return err
	}
	log := logger.Or(ctx, s.logger).With(zap.String("session_id", sess.ID))

	p, err := s.findOrNewPurchase(ctx, purchase.SourceCheckoutSession, sess.ID)
	if err != nil {
		return err
	}
	wasPaid := p.Status == purchase.StatusPaid

	p.ApplyMetadata(sess.Metadata)
	if sess.Mode == stripe.CheckoutSessionModeSubscription {
		p.Mode = checkout.ModeSubscription
	}
	p.CustomerEmail = sessionEmail(&sess)
	if sess.Customer != nil {
		p.CustomerID = sess.Customer.ID
	}
	if sess.PaymentIntent != nil {
		p.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.Subscription != nil {
		p.SubscriptionID = sess.Subscription.ID
	}

	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		p.MarkPaid(sess.AmountTotal, string(sess.Currency))
	default:
		// delayed payment methods settle later
		p.AmountTotal = sess.AmountTotal
		if sess.Currency != "" {
			p.Currency = string(sess.Currency)
		}
	}

	if err := s.purchases.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	log.Info("Checkout purchase recorded",
		zap.String("reference", p.Reference),
		zap.String("status", string(p.Status)),
		zap.Int64("amount_total", p.AmountTotal))

	if p.Status != purchase.StatusPaid || wasPaid {
		return nil
	}
	s.fulfil(ctx, p, s.sessionLines(ctx, p))
	return nil
}

// handleCheckoutPaymentFailed marks a session purchase unpaid when its
// delayed payment fails
func (s *WebhookService) handleCheckoutPaymentFailed(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := decode(event, &sess); err != nil {
		return err
	}

	p, err := s.findOrNewPurchase(ctx, purchase.SourceCheckoutSession, sess.ID)
	if err != nil {
		return err
	}
	p.ApplyMetadata(sess.Metadata)
	if p.CustomerEmail == "" {
		p.CustomerEmail = sessionEmail(&sess)
	}
	p.MarkPaymentFailed()

	if err := s.purchases.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	logger.Or(ctx, s.logger).Warn("Checkout payment failed",
		zap.String("session_id", sess.ID),
		zap.String("reference", p.Reference),
		zap.String("status", string(p.Status)))
	return nil
}

// handlePaymentIntentSucceeded records purchases paid through the elements
// flow. Intents owned by checkout sessions or invoices are recorded by their
// own events.
func (s *WebhookService) handlePaymentIntentSucceeded(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := decode(event, &pi); err != nil {
		return err
	}
	log := logger.Or(ctx, s.logger).With(zap.String("payment_intent_id", pi.ID))

	if pi.Metadata[billing.MetaKeyOrigin] != billing.OriginElements || pi.Invoice != nil {
		log.Debug("Payment intent recorded by its checkout session or invoice")
		return nil
	}

	p, err := s.findOrNewPurchase(ctx, purchase.SourcePaymentIntent, pi.ID)
	if err != nil {
		return err
	}
	wasPaid := p.Status == purchase.StatusPaid

	p.ApplyMetadata(pi.Metadata)
	p.PaymentIntentID = pi.ID
	p.CustomerEmail = pi.ReceiptEmail
	if pi.Customer != nil {
		p.CustomerID = pi.Customer.ID
		if p.CustomerEmail == "" {
			p.CustomerEmail = pi.Customer.Email
		}
	}
	amount := pi.AmountReceived
	if amount == 0 {
		amount = pi.Amount
	}
	p.MarkPaid(amount, string(pi.Currency))

	if err := s.purchases.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	log.Info("Payment intent purchase recorded", zap.String("reference", p.Reference))

	if wasPaid {
		return nil
	}
	s.fulfil(ctx, p, nil)
	return nil
}

// handleSubscriptionChanged handles customer.subscription.created and updated events
func (s *WebhookService) handleSubscriptionChanged(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := decode(event, &sub); err != nil {
		return err
	}
	rec, err := s.syncSubscription(ctx, &sub)
	if err != nil {
		return err
	}
	if err := s.subscriptions.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	logger.Or(ctx, s.logger).Info("Subscription synced",
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(rec.Status)))
	return nil
}

// handleSubscriptionDeleted handles customer.subscription.deleted events
func (s *WebhookService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := decode(event, &sub); err != nil {
		return err
	}
	rec, err := s.syncSubscription(ctx, &sub)
	if err != nil {
		return err
	}

	at := s.now()
	switch {
	case sub.CanceledAt > 0:
		at = time.Unix(sub.CanceledAt, 0)
	case sub.EndedAt > 0:
		at = time.Unix(sub.EndedAt, 0)
	}
	rec.MarkCanceled(at)

	if err := s.subscriptions.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	logger.Or(ctx, s.logger).Info("Subscription canceled", zap.String("subscription_id", sub.ID))
	return nil
}

// handleInvoicePaid handles invoice.paid events
func (s *WebhookService) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := decode(event, &inv); err != nil {
		return err
	}
	rec, ok, err := s.invoiceSubscription(ctx, &inv)
	if err != nil || !ok {
		return err
	}

	rec.MarkActive()
	if err := s.subscriptions.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	logger.Or(ctx, s.logger).Info("Subscription invoice paid",
		zap.String("invoice_id", inv.ID),
		zap.String("subscription_id", rec.StripeSubscriptionID))
	return nil
}

// handleInvoicePaymentFailed handles invoice.payment_failed events
func (s *WebhookService) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := decode(event, &inv); err != nil {
		return err
	}
	rec, ok, err := s.invoiceSubscription(ctx, &inv)
	if err != nil || !ok {
		return err
	}

	rec.MarkPastDue()
	if err := s.subscriptions.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	log := logger.Or(ctx, s.logger).With(
		zap.String("invoice_id", inv.ID),
		zap.String("subscription_id", rec.StripeSubscriptionID))
	log.Warn("Subscription invoice payment failed")

	to := inv.CustomerEmail
	if to == "" {
		to = rec.CustomerEmail
	}
	if to == "" {
		log.Warn("No customer email for failed payment notice")
		return nil
	}
	s.notify(ctx, "payment_failed", func() error {
		msg, err := mailer.PaymentFailed(to, mailer.PaymentFailedData{
			Amount:     s.formatAmount(inv.AmountDue, string(inv.Currency)),
			InvoiceURL: inv.HostedInvoiceURL,
		})
		if err != nil {
			return err
		}
		return s.mailer.Send(ctx, msg)
	})
	return nil
}

func (s *WebhookService) findOrNewPurchase(ctx context.Context, source purchase.Source, externalID string) (*purchase.Purchase, error) {
	p, err := s.purchases.FindByExternalID(ctx, externalID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}
	return purchase.NewPurchase(source, externalID)
}

func (s *WebhookService) findOrNewSubscription(ctx context.Context, subscriptionID, customerID string) (*purchase.Subscription, error) {
	rec, err := s.subscriptions.FindByStripeID(ctx, subscriptionID)
	if err == nil {
		if rec.CustomerID == "" {
			rec.CustomerID = customerID
		}
		return rec, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return purchase.NewSubscription(subscriptionID, customerID)
}

func (s *WebhookService) syncSubscription(ctx context.Context, sub *stripe.Subscription) (*purchase.Subscription, error) {
	customerID := ""
	email := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
		email = sub.Customer.Email
	}
	rec, err := s.findOrNewSubscription(ctx, sub.ID, customerID)
	if err != nil {
		return nil, err
	}

	state := purchase.SyncState{
		Status:            string(sub.Status),
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CanceledAt:        sub.CanceledAt,
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		state.PriceID = sub.Items.Data[0].Price.ID
	}
	rec.Sync(state)

	if email != "" {
		rec.CustomerEmail = email
	}
	if uid := sub.Metadata[checkout.MetaKeyUserID]; uid != "" {
		rec.UserID = uid
	}
	return rec, nil
}

// invoiceSubscription loads the subscription an invoice bills. One-off
// invoices report ok=false.
func (s *WebhookService) invoiceSubscription(ctx context.Context, inv *stripe.Invoice) (*purchase.Subscription, bool, error) {
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		logger.Or(ctx, s.logger).Debug("Invoice has no subscription, skipping", zap.String("invoice_id", inv.ID))
		return nil, false, nil
	}
	customerID := ""
	if inv.Customer != nil {
		customerID = inv.Customer.ID
	}
	rec, err := s.findOrNewSubscription(ctx, inv.Subscription.ID, customerID)
	if err != nil {
		return nil, false, err
	}
	if rec.CustomerEmail == "" {
		rec.CustomerEmail = inv.CustomerEmail
	}
	return rec, true, nil
}

func sessionEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	if sess.Customer != nil {
		return sess.Customer.Email
	}
	return ""
}
