package handler

import (
	"context"

	checkoutapp "github.com/fitcoach/backend/internal/application/checkout"
	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/gin-gonic/gin"
)

// CheckoutService runs the checkout flows
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req checkout.CheckoutRequest) (*checkoutapp.SessionResult, error)
	CreateSubscription(ctx context.Context, req checkout.CheckoutRequest) (*checkoutapp.SessionResult, error)
	CreatePaymentIntent(ctx context.Context, req checkoutapp.PaymentIntentRequest) (*checkoutapp.PaymentIntentResult, error)
}

// CheckoutHandler serves the checkout and payment endpoints
type CheckoutHandler struct {
	BaseHandler
	service CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// SessionResponse identifies a hosted checkout session
type SessionResponse struct {
	SessionID string `json:"sessionId" example:"cs_test_a1b2c3"`
	URL       string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_a1b2c3"`
}

// PaymentIntentBody is the create-payment-intent request
type PaymentIntentBody struct {
	PriceID    string         `json:"priceId" binding:"required"`
	UserID     string         `json:"userId"`
	CustomerID string         `json:"customerId"`
	Metadata   map[string]any `json:"metadata"`
	UIMode     string         `json:"uiMode"`
	SuccessURL string         `json:"successUrl"`
	CancelURL  string         `json:"cancelUrl"`
}

// PaymentIntentResponse carries a client secret (elements) or a hosted
// session (hosted)
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	SubscriptionID  string `json:"subscriptionId,omitempty"`
	SessionID       string `json:"sessionId,omitempty"`
	URL             string `json:"url,omitempty"`
}

// CreateCheckoutSession godoc
//
//	@ID				createCheckoutSession
//	@Summary		Create a hosted checkout session
//	@Description	Normalizes the cart, selects payment or subscription mode and creates a Stripe Checkout Session
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		checkout.CheckoutRequest	true	"Cart"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		502		{object}	dto.ErrorResponse
//	@Router			/create-checkout-session [post]
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req checkout.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SessionResponse{SessionID: result.SessionID, URL: result.URL})
}

// CreateSubscription godoc
//
//	@ID				createSubscription
//	@Summary		Create a hosted subscription session
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		checkout.CheckoutRequest	true	"Cart of recurring items"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		502		{object}	dto.ErrorResponse
//	@Router			/create-subscription [post]
func (h *CheckoutHandler) CreateSubscription(c *gin.Context) {
	var req checkout.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.CreateSubscription(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SessionResponse{SessionID: result.SessionID, URL: result.URL})
}

// CreatePaymentIntent godoc
//
//	@ID				createPaymentIntent
//	@Summary		Start a payment for one catalog price
//	@Description	Returns a client secret for the embedded form, or a hosted session when uiMode is hosted
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PaymentIntentBody	true	"Price and customer"
//	@Success		200		{object}	PaymentIntentResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		502		{object}	dto.ErrorResponse
//	@Router			/create-payment-intent [post]
func (h *CheckoutHandler) CreatePaymentIntent(c *gin.Context) {
	var body PaymentIntentBody
	if !h.BindJSON(c, &body) {
		return
	}
	result, err := h.service.CreatePaymentIntent(c.Request.Context(), checkoutapp.PaymentIntentRequest{
		PriceID:    body.PriceID,
		UserID:     body.UserID,
		CustomerID: body.CustomerID,
		Metadata:   body.Metadata,
		UIMode:     body.UIMode,
		SuccessURL: body.SuccessURL,
		CancelURL:  body.CancelURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PaymentIntentResponse{
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.PaymentIntentID,
		SubscriptionID:  result.SubscriptionID,
		SessionID:       result.SessionID,
		URL:             result.URL,
	})
}
