package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes shared across layers. HTTP status mapping lives in the dto package.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUpstreamRejected = "UPSTREAM_REJECTED"
	CodeUpstreamError    = "UPSTREAM_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnauthorized  = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
)

// ValidationError reports a malformed or missing request field. It is always
// raised before any call to an external provider.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a validation error for the given field.
// An empty field produces a request-level error.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamError is returned when an external provider rejected or failed a call.
// Message carries the provider's own text unchanged.
type UpstreamError struct {
	Provider   string
	Message    string
	StatusCode int
	Code       string
	// Rejected is true when the provider refused the request itself
	// (bad parameters, declined card) rather than failing to serve it.
	Rejected bool
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Provider + ": " + e.Err.Error()
	}
	return e.Provider + ": request failed"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the shared code for this failure.
func (e *UpstreamError) ErrorCode() string {
	if e.Rejected {
		return CodeUpstreamRejected
	}
	return CodeUpstreamError
}

// ConfigurationError means a required secret or setting is missing.
// It is fatal at startup.
type ConfigurationError struct {
	Keys []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Keys) == 1 {
		return fmt.Sprintf("configuration: %s is required", e.Keys[0])
	}
	return fmt.Sprintf("configuration: %s are required", strings.Join(e.Keys, ", "))
}

// NewConfigurationError creates a configuration error listing the missing keys.
func NewConfigurationError(keys ...string) *ConfigurationError {
	return &ConfigurationError{Keys: keys}
}
