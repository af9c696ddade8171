package dto

import (
	"github.com/fitcoach/backend/internal/domain/shared"
)

// ErrorResponse is the error envelope of every endpoint
type ErrorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code, RequestID: requestID}
}

// NewValidationErrorResponse creates a validation error envelope with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      ErrCodeValidation,
		RequestID: requestID,
		Details:   details,
	}
}

// PageQuery binds paging query parameters
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Filter converts the query to a repository filter
func (q PageQuery) Filter() shared.Filter {
	f := shared.DefaultFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	return f
}

// Page is a paged listing
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPage converts a paginated result to its response shape
func NewPage[T any](p shared.Paginated[T]) Page[T] {
	return Page[T]{
		Items:      p.Items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
