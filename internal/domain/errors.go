package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeTooLarge      = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidCount      = NewDomainError(ErrCodeValidation, "array count must be positive")
	ErrInvalidRange      = NewDomainError(ErrCodeValidation, "invalid array length range")
	ErrInvalidWorkers    = NewDomainError(ErrCodeValidation, "worker count must be positive")
	ErrUnsortedSequence  = NewDomainError(ErrCodeValidation, "sequence must be non-decreasing")
	ErrUnknownAlgorithm  = NewDomainError(ErrCodeValidation, "unknown algorithm")
	ErrUnknownFormat     = NewDomainError(ErrCodeValidation, "unknown output format")
	ErrInvalidCursor     = NewDomainError(ErrCodeValidation, "invalid cursor format")
	ErrCountLimitReached = NewDomainError(ErrCodeValidation, "array count exceeds limit")
)

// Request size errors
var (
	ErrBodyTooLarge = NewDomainError(ErrCodeTooLarge, "request body too large")
)

// Not found errors
var (
	ErrNoBatch = NewDomainError(ErrCodeNotFound, "no benchmark batch available yet")
)

// Authorization errors
var (
	ErrInvalidToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)

// Infrastructure errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
