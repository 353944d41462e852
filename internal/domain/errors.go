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
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"

	// Configuration and input errors, not retryable
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeFetch         = "FETCH_ERROR"
	ErrCodeExtraction    = "EXTRACTION_ERROR"

	// Upstream provider errors; rate-limit and unavailability are retryable
	ErrCodeUpstreamAuth        = "UPSTREAM_AUTH"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"

	// Vector index errors, retryable
	ErrCodeIndexUnavailable = "INDEX_UNAVAILABLE"

	// Chat chain errors, surfaced directly to the caller
	ErrCodeRetrieval  = "RETRIEVAL_ERROR"
	ErrCodeGeneration = "GENERATION_ERROR"
	ErrCodeNoQuestion = "NO_QUESTION"
)

// Validation errors
var (
	ErrMissingFileURL  = NewDomainError(ErrCodeValidation, "file_url is required")
	ErrMissingFileName = NewDomainError(ErrCodeValidation, "file_name is required")
	ErrMissingUserID   = NewDomainError(ErrCodeValidation, "user identity is required")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrAPIKeyNotFound   = NewDomainError(ErrCodeNotFound, "api key not found")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Chat chain errors
var (
	ErrNoQuestion = NewDomainError(ErrCodeNoQuestion, "no user message to answer")
)

// IsRetryable reports whether an error class may succeed on retry with
// backoff. Auth and configuration failures never do; rate limits and
// unavailable upstreams or indexes might.
func IsRetryable(err error) bool {
	domainErr, ok := err.(*DomainError)
	if !ok {
		return false
	}
	switch domainErr.Code {
	case ErrCodeRateLimited, ErrCodeUpstreamUnavailable, ErrCodeIndexUnavailable:
		return true
	}
	return false
}
