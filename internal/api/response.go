// Package api contains shared HTTP response helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/docchat/internal/domain"
)

// SuccessResponse is the data envelope used by most endpoints.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse carries a failure and an optional detail string.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes status and, when body is non-nil, a JSON-encoded body.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// Success writes data inside the standard envelope.
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorWithDetails writes a JSON error body with a detail string.
func ErrorWithDetails(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorResponse{Error: message, Details: details})
}

var statusByErrCode = map[string]int{
	domain.ErrCodeValidation:          http.StatusBadRequest,
	domain.ErrCodeNotFound:            http.StatusNotFound,
	domain.ErrCodeUnauthorized:        http.StatusUnauthorized,
	domain.ErrCodeNoQuestion:          http.StatusUnprocessableEntity,
	domain.ErrCodeExtraction:          http.StatusUnprocessableEntity,
	domain.ErrCodeRateLimited:         http.StatusTooManyRequests,
	domain.ErrCodeFetch:               http.StatusBadGateway,
	domain.ErrCodeUpstreamAuth:        http.StatusBadGateway,
	domain.ErrCodeUpstreamUnavailable: http.StatusBadGateway,
	domain.ErrCodeIndexUnavailable:    http.StatusServiceUnavailable,
}

// DomainErrorToHTTP maps a domain error code to a status. Anything that is
// not a DomainError is an internal error.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError
	}
	if status, ok := statusByErrCode[derr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes err with the status its domain code maps to.
func HandleError(w http.ResponseWriter, err error) {
	Error(w, DomainErrorToHTTP(err), err.Error())
}
