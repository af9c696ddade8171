package handler

import (
	"context"
	"errors"
	"io"

	billingapp "github.com/fitcoach/backend/internal/application/billing"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Maximum webhook payload size. Stripe caps event payloads well below this.
const maxWebhookPayloadSize = 256 << 10

// WebhookProcessor verifies and handles a Stripe delivery
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*billingapp.WebhookResult, error)
}

// WebhookHandler receives Stripe webhooks. Stripe authenticates with the
// signature header, not a bearer token.
type WebhookHandler struct {
	BaseHandler
	processor WebhookProcessor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(processor WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// WebhookResponse acknowledges a delivery
type WebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"eventId,omitempty" example:"evt_1234567890"`
	EventType string `json:"eventType,omitempty" example:"checkout.session.completed"`
	Message   string `json:"message,omitempty" example:"Event processed"`
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Handle Stripe webhook
//	@Description	Verifies the Stripe-Signature header and dispatches on the event type. Handler failures are still acknowledged.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe webhook signature"
//	@Success		200					{object}	WebhookResponse
//	@Failure		400					{object}	dto.ErrorResponse	"Invalid signature"
//	@Failure		413					{object}	dto.ErrorResponse	"Payload too large"
//	@Router			/webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Stripe requires the raw body for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, dto.ErrCodePayloadTooLarge, "Payload too large")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.Error(c, dto.ErrCodeInvalidSignature, "Missing Stripe-Signature header")
		return
	}

	result, err := h.processor.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, billingapp.ErrInvalidSignature) {
			h.Error(c, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, WebhookResponse{
		Received:  result.Received,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
