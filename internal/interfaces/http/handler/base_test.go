package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/fitcoach/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation error with field",
			err:         shared.NewValidationError("items", "cart is empty"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    dto.ErrCodeValidation,
			wantMessage: "items: cart is empty",
		},
		{
			name:        "wrapped validation error",
			err:         fmt.Errorf("normalize: %w", shared.NewValidationError("", "no items")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    dto.ErrCodeValidation,
			wantMessage: "no items",
		},
		{
			name: "rejected upstream error keeps provider message",
			err: &shared.UpstreamError{
				Provider: "stripe", Message: "No such price: 'price_x'", StatusCode: 400, Rejected: true,
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    dto.ErrCodeUpstreamRejected,
			wantMessage: "No such price: 'price_x'",
		},
		{
			name:        "failed upstream error",
			err:         &shared.UpstreamError{Provider: "stripe", Message: "stripe: create session failed", StatusCode: 500},
			wantStatus:  http.StatusBadGateway,
			wantCode:    dto.ErrCodeUpstream,
			wantMessage: "stripe: create session failed",
		},
		{
			name:        "not found",
			err:         shared.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    dto.ErrCodeNotFound,
			wantMessage: shared.ErrNotFound.Message,
		},
		{
			name:        "body too large",
			err:         fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 10}),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    dto.ErrCodePayloadTooLarge,
			wantMessage: "Request body exceeds maximum allowed size",
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("connection refused to 10.0.0.3"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Error)
			assert.Equal(t, "req-1", resp.RequestID)
		})
	}
}

func TestHandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}

func TestBindJSON(t *testing.T) {
	type body struct {
		Email string `json:"email" binding:"required,email"`
		Count int    `json:"count"`
	}

	run := func(payload string) (*httptest.ResponseRecorder, bool) {
		h := &BaseHandler{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		c.Request.Header.Set("Content-Type", "application/json")
		var dest body
		return w, h.BindJSON(c, &dest)
	}

	t.Run("ok", func(t *testing.T) {
		_, ok := run(`{"email":"a@b.co"}`)
		assert.True(t, ok)
	})

	t.Run("empty body", func(t *testing.T) {
		w, ok := run(``)
		assert.False(t, ok)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w, ok := run(`{"email":`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		w, ok := run(`{"email":"a@b.co","count":"many"}`)
		assert.False(t, ok)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "count", resp.Details[0].Field)
	})

	t.Run("failed binding rule", func(t *testing.T) {
		w, ok := run(`{"email":"nope"}`)
		assert.False(t, ok)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "email", resp.Details[0].Field)
	})
}
