package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/purchase"
	"github.com/fitcoach/backend/internal/domain/shared/valueobject"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
	"github.com/fitcoach/backend/internal/infrastructure/receipt"
	"github.com/fitcoach/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const receiptContentType = "application/pdf"

// fulfil renders and archives the receipt of a newly paid purchase and sends
// the buyer and gift emails. Every step is best effort: the purchase is
// already recorded.
func (s *WebhookService) fulfil(ctx context.Context, p *purchase.Purchase, lines []receipt.Line) {
	log := logger.Or(ctx, s.logger).With(zap.String("reference", p.Reference))
	subscription := p.Mode == checkout.ModeSubscription

	var attachment *mailer.Attachment
	total, err := p.Total()
	if err != nil {
		log.Warn("Cannot build receipt total", zap.Error(err))
	} else {
		if len(lines) == 0 {
			lines = []receipt.Line{{Description: defaultLineDescription(subscription), Quantity: 1, Amount: total}}
		}
		rec := receipt.Receipt{
			Reference:          p.Reference,
			IssuedAt:           s.now(),
			CustomerEmail:      p.CustomerEmail,
			Lines:              lines,
			Total:              total,
			Subscription:       subscription,
			GiftRecipientEmail: p.GiftRecipientEmail,
		}
		attachment = s.issueReceipt(ctx, p, rec)
	}

	if p.CustomerEmail == "" {
		log.Warn("No customer email for purchase confirmation")
	} else {
		s.notify(ctx, "confirmation", func() error {
			msg, err := mailer.PurchaseConfirmation(p.CustomerEmail, mailer.ConfirmationData{
				Reference:     p.Reference,
				Total:         s.formatAmount(p.AmountTotal, p.Currency),
				Lines:         s.lineData(lines),
				Subscription:  subscription,
				GiftRecipient: p.GiftRecipientEmail,
			}, attachment)
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, msg)
		})
	}

	if p.IsGift && p.GiftRecipientEmail != "" {
		s.notify(ctx, "gift", func() error {
			msg, err := mailer.GiftNotification(p.GiftRecipientEmail, mailer.GiftData{
				PurchaserEmail: p.CustomerEmail,
				Reference:      p.Reference,
			})
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, msg)
		})
	}
}

// issueReceipt renders the PDF and archives it when an archive is set.
// It returns the email attachment, or nil when rendering failed.
func (s *WebhookService) issueReceipt(ctx context.Context, p *purchase.Purchase, rec receipt.Receipt) *mailer.Attachment {
	log := logger.Or(ctx, s.logger).With(zap.String("reference", p.Reference))

	pdf, err := s.receipts.Render(rec)
	if err != nil {
		log.Error("Failed to render receipt", zap.Error(err))
		return nil
	}
	attachment := &mailer.Attachment{
		Filename:    rec.Filename(),
		ContentType: receiptContentType,
		Data:        pdf,
	}

	if s.archive == nil {
		return attachment
	}
	key := storage.ReceiptKey(s.archivePrefix, p.Reference, rec.IssuedAt)
	if err := s.archive.Put(ctx, key, pdf, receiptContentType); err != nil {
		log.Error("Failed to archive receipt", zap.String("key", key), zap.Error(err))
		return attachment
	}
	p.AttachReceipt(key)
	if err := s.purchases.Save(ctx, p); err != nil {
		log.Error("Failed to record receipt key", zap.String("key", key), zap.Error(err))
	}
	log.Info("Receipt archived", zap.String("key", key))
	return attachment
}

// sessionLines fetches the purchased lines of a checkout session. Failures
// fall back to a single summary line.
func (s *WebhookService) sessionLines(ctx context.Context, p *purchase.Purchase) []receipt.Line {
	if s.lineItems == nil {
		return nil
	}
	items, err := s.lineItems.ListSessionLineItems(ctx, p.ExternalID)
	if err != nil {
		logger.Or(ctx, s.logger).Warn("Failed to list session line items",
			zap.String("session_id", p.ExternalID), zap.Error(err))
		return nil
	}

	lines := make([]receipt.Line, 0, len(items))
	for _, item := range items {
		currency := item.Currency
		if currency == "" {
			currency = p.Currency
		}
		amount, err := valueobject.FromMinorUnits(item.AmountTotal, currency)
		if err != nil {
			logger.Or(ctx, s.logger).Warn("Skipping receipt line", zap.Error(err))
			continue
		}
		description := item.Description
		if description == "" {
			description = "Item"
		}
		lines = append(lines, receipt.Line{Description: description, Quantity: item.Quantity, Amount: amount})
	}
	return lines
}

func (s *WebhookService) lineData(lines []receipt.Line) []mailer.LineData {
	out := make([]mailer.LineData, 0, len(lines))
	for _, l := range lines {
		out = append(out, mailer.LineData{
			Description: l.Description,
			Quantity:    l.Quantity,
			Amount:      l.Amount.Format(s.locale),
		})
	}
	return out
}

func (s *WebhookService) formatAmount(minor int64, currency string) string {
	m, err := valueobject.FromMinorUnits(minor, currency)
	if err != nil {
		return fmt.Sprintf("%d %s", minor, strings.ToUpper(currency))
	}
	return m.Format(s.locale)
}

// notify sends one email; failures are logged and swallowed
func (s *WebhookService) notify(ctx context.Context, kind string, send func() error) {
	if err := send(); err != nil {
		logger.Or(ctx, s.logger).Warn("Failed to send email",
			zap.String("email", kind), zap.Error(err))
	}
}

func defaultLineDescription(subscription bool) string {
	if subscription {
		return "FitCoach subscription"
	}
	return "FitCoach order"
}
