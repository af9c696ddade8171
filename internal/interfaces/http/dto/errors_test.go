package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidSignature, http.StatusBadRequest},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUpstreamRejected, http.StatusBadRequest},
		{ErrCodeUpstream, http.StatusBadGateway},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(shared.CodeNotFound))
	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(shared.CodeValidation))
	assert.Equal(t, ErrCodeUpstreamRejected, NormalizeErrorCode(shared.CodeUpstreamRejected))
	assert.Equal(t, ErrCodeUpstream, NormalizeErrorCode(shared.CodeUpstreamError))
	assert.Equal(t, ErrCodeUnauthorized, NormalizeErrorCode(shared.CodeUnauthorized))
	assert.Equal(t, ErrCodeRateLimited, NormalizeErrorCode(ErrCodeRateLimited))
}

func TestErrorResponse_JSONShape(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "Resource not found", "req-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Resource not found","code":"ERR_NOT_FOUND","request_id":"req-1"}`, string(body))

	body, err = json.Marshal(NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Request validation failed","code":"ERR_VALIDATION","details":[{"field":"email","message":"Invalid email format"}]}`, string(body))
}

func TestPageQuery_Filter(t *testing.T) {
	f := PageQuery{}.Filter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	f = PageQuery{Page: 3, PageSize: 10}.Filter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 10, f.PageSize)
}

func TestNewPage(t *testing.T) {
	p := NewPage(shared.NewPaginated([]string{"a"}, 21, 2, 20))
	assert.Equal(t, []string{"a"}, p.Items)
	assert.Equal(t, 2, p.TotalPages)
}
