package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	billingapp "github.com/fitcoach/backend/internal/application/billing"
	"github.com/fitcoach/backend/internal/infrastructure/cache"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*billingapp.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.WebhookResult), args.Error(1)
}

func postWebhook(p WebhookProcessor, payload []byte, signature string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/webhooks/stripe", NewWebhookHandler(p).HandleStripeWebhook)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(string(payload)))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signedEvent(t *testing.T, id, eventType string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(
		`{"id":%q,"object":"event","type":%q,"api_version":%q,"created":%d,"data":{"object":{"id":"obj_1"}}}`,
		id, eventType, stripe.APIVersion, time.Now().Unix()))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return payload, signed.Header
}

func TestWebhook_UnhandledEventIsAcknowledged(t *testing.T) {
	svc := billingapp.NewWebhookService(billingapp.WebhookServiceConfig{
		WebhookSecret: testWebhookSecret,
		Idempotency:   cache.NewInMemoryIdempotencyStore(),
		Logger:        zap.NewNop(),
	})
	payload, sig := signedEvent(t, "evt_123", "customer.created")

	w := postWebhook(svc, payload, sig)

	require.Equal(t, http.StatusOK, w.Code)
	var resp WebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Received)
	assert.Equal(t, "evt_123", resp.EventID)
	assert.Equal(t, "customer.created", resp.EventType)
	assert.Equal(t, billingapp.MessageNotHandled, resp.Message)
}

func TestWebhook_BadSignature(t *testing.T) {
	svc := billingapp.NewWebhookService(billingapp.WebhookServiceConfig{WebhookSecret: testWebhookSecret})
	payload, _ := signedEvent(t, "evt_1", "customer.created")

	w := postWebhook(svc, payload, "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidSignature, decodeError(t, w).Code)
}

func TestWebhook_MissingSignature(t *testing.T) {
	p := new(MockWebhookProcessor)

	w := postWebhook(p, []byte(`{}`), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeInvalidSignature, resp.Code)
	assert.Equal(t, "Missing Stripe-Signature header", resp.Error)
	p.AssertNotCalled(t, "ProcessWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_PayloadTooLarge(t *testing.T) {
	p := new(MockWebhookProcessor)

	w := postWebhook(p, []byte(strings.Repeat("x", maxWebhookPayloadSize+1)), "t=1,v1=x")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	p.AssertNotCalled(t, "ProcessWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_PassesRawBody(t *testing.T) {
	p := new(MockWebhookProcessor)
	raw := []byte(`{"id":"evt_9",  "type":"invoice.paid"}`)
	p.On("ProcessWebhook", mock.Anything, raw, "t=1,v1=abc").Return(&billingapp.WebhookResult{
		Received: true, EventID: "evt_9", EventType: "invoice.paid", Processed: true, Message: billingapp.MessageProcessed,
	}, nil)

	w := postWebhook(p, raw, "t=1,v1=abc")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"eventId":"evt_9","eventType":"invoice.paid","message":"Event processed"}`, w.Body.String())
	p.AssertExpectations(t)
}
