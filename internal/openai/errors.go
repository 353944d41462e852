package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloo-solutions/docchat/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// classifyError maps OpenAI client failures onto the domain error taxonomy so
// callers can choose a retry policy per failure class.
func classifyError(err error) *domain.DomainError {
	if err == nil {
		return nil
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamUnavailable, "openai request timed out", err)
	}

	// Transport-level failures (connection refused, DNS, TLS)
	return domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamUnavailable, "openai request failed", err)
}

func classifyStatus(status int, err error) *domain.DomainError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamAuth, "openai rejected the API key", err)
	case status == http.StatusTooManyRequests:
		return domain.NewDomainErrorWithCause(domain.ErrCodeRateLimited, "openai rate limit exceeded", err)
	case status >= http.StatusInternalServerError:
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamUnavailable, "openai service unavailable", err)
	default:
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamUnavailable, "openai request failed", err)
	}
}
