package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	checkoutapp "github.com/fitcoach/backend/internal/application/checkout"
	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateCheckoutSession(ctx context.Context, req checkout.CheckoutRequest) (*checkoutapp.SessionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.SessionResult), args.Error(1)
}

func (m *MockCheckoutService) CreateSubscription(ctx context.Context, req checkout.CheckoutRequest) (*checkoutapp.SessionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.SessionResult), args.Error(1)
}

func (m *MockCheckoutService) CreatePaymentIntent(ctx context.Context, req checkoutapp.PaymentIntentRequest) (*checkoutapp.PaymentIntentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.PaymentIntentResult), args.Error(1)
}

func setupCheckoutRouter(svc CheckoutService) *gin.Engine {
	h := NewCheckoutHandler(svc)
	r := gin.New()
	r.POST("/create-checkout-session", h.CreateCheckoutSession)
	r.POST("/create-subscription", h.CreateSubscription)
	r.POST("/create-payment-intent", h.CreatePaymentIntent)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCheckoutSession(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req checkout.CheckoutRequest) bool {
		return len(req.Items) == 1 &&
			req.Items[0].StripePriceID == "price_abc" &&
			req.Items[0].Quantity == 2 &&
			req.CustomerEmail == "sam@example.com" &&
			req.GiftRecipientEmail == "friend@example.com"
	})).Return(&checkoutapp.SessionResult{SessionID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1", Mode: checkout.ModePayment}, nil)

	w := postJSON(setupCheckoutRouter(svc), "/create-checkout-session", `{
		"items":[{"stripe_price_id":"price_abc","quantity":2}],
		"successUrl":"https://fitcoach.example/success",
		"cancelUrl":"https://fitcoach.example/cancel",
		"customerEmail":"sam@example.com",
		"giftRecipientEmail":"friend@example.com"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessionId":"cs_1","url":"https://checkout.stripe.com/c/pay/cs_1"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCreateCheckoutSession_InlinePrice(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req checkout.CheckoutRequest) bool {
		it := req.Items[0]
		return it.Price != nil && it.Price.StringFixed(2) == "49.00" && it.BillingInterval == checkout.IntervalMonth
	})).Return(&checkoutapp.SessionResult{SessionID: "cs_2", URL: "u", Mode: checkout.ModeSubscription}, nil)

	w := postJSON(setupCheckoutRouter(svc), "/create-checkout-session",
		`{"items":[{"name":"Coaching","price":49.00,"billingInterval":"month"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCreateCheckoutSession_ValidationError(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, shared.NewValidationError("items", "cart is empty"))

	w := postJSON(setupCheckoutRouter(svc), "/create-checkout-session", `{"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Code)
	assert.Equal(t, "items: cart is empty", resp.Error)
}

func TestCreateCheckoutSession_MalformedBody(t *testing.T) {
	svc := new(MockCheckoutService)

	w := postJSON(setupCheckoutRouter(svc), "/create-checkout-session", `{"items":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	svc.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCreateSubscription_UpstreamRejected(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("CreateSubscription", mock.Anything, mock.Anything).Return(nil, &shared.UpstreamError{
		Provider: "stripe", Message: "No such price: 'price_gone'", StatusCode: 400, Rejected: true,
	})

	w := postJSON(setupCheckoutRouter(svc), "/create-subscription",
		`{"items":[{"stripe_price_id":"price_gone"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeUpstreamRejected, resp.Code)
	assert.Equal(t, "No such price: 'price_gone'", resp.Error)
}

func TestCreatePaymentIntent(t *testing.T) {
	t.Run("elements", func(t *testing.T) {
		svc := new(MockCheckoutService)
		svc.On("CreatePaymentIntent", mock.Anything, checkoutapp.PaymentIntentRequest{
			PriceID:    "price_1",
			UserID:     "user_1",
			CustomerID: "cus_1",
			Metadata:   map[string]any{"plan": "basic"},
		}).Return(&checkoutapp.PaymentIntentResult{
			UIMode: checkoutapp.UIModeElements, ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1",
		}, nil)

		w := postJSON(setupCheckoutRouter(svc), "/create-payment-intent",
			`{"priceId":"price_1","userId":"user_1","customerId":"cus_1","metadata":{"plan":"basic"}}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"clientSecret":"pi_1_secret","paymentIntentId":"pi_1"}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("hosted", func(t *testing.T) {
		svc := new(MockCheckoutService)
		svc.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(req checkoutapp.PaymentIntentRequest) bool {
			return req.UIMode == "hosted"
		})).Return(&checkoutapp.PaymentIntentResult{
			UIMode: checkoutapp.UIModeHosted, SessionID: "cs_9", URL: "https://checkout.stripe.com/c/pay/cs_9",
		}, nil)

		w := postJSON(setupCheckoutRouter(svc), "/create-payment-intent", `{"priceId":"price_1","uiMode":"hosted"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp PaymentIntentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.ClientSecret)
		assert.Equal(t, "cs_9", resp.SessionID)
	})

	t.Run("missing price", func(t *testing.T) {
		svc := new(MockCheckoutService)

		w := postJSON(setupCheckoutRouter(svc), "/create-payment-intent", `{"userId":"user_1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "priceId", resp.Details[0].Field)
		svc.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
	})
}
