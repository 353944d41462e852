package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusCreated, map[string]string{"id": "doc-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"id": "doc-1"}, body.Data)
}

func TestErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	ErrorWithDetails(rec, http.StatusBadGateway, "ingestion failed", "fetch returned status 404")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ingestion failed", body.Error)
	assert.Equal(t, "fetch returned status 404", body.Details)
}

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", domain.NewDomainError(domain.ErrCodeValidation, "bad"), http.StatusBadRequest},
		{"not found", domain.ErrDocumentNotFound, http.StatusNotFound},
		{"unauthorized", domain.ErrInvalidAPIKey, http.StatusUnauthorized},
		{"no question", domain.ErrNoQuestion, http.StatusUnprocessableEntity},
		{"rate limited", domain.NewDomainError(domain.ErrCodeRateLimited, "slow down"), http.StatusTooManyRequests},
		{"fetch", domain.NewDomainError(domain.ErrCodeFetch, "404"), http.StatusBadGateway},
		{"upstream auth", domain.NewDomainError(domain.ErrCodeUpstreamAuth, "401"), http.StatusBadGateway},
		{"upstream down", domain.NewDomainError(domain.ErrCodeUpstreamUnavailable, "503"), http.StatusBadGateway},
		{"index down", domain.NewDomainError(domain.ErrCodeIndexUnavailable, "db"), http.StatusServiceUnavailable},
		{"extraction", domain.NewDomainError(domain.ErrCodeExtraction, "not a pdf"), http.StatusUnprocessableEntity},
		{"internal", domain.NewDomainError(domain.ErrCodeInternalError, "boom"), http.StatusInternalServerError},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, DomainErrorToHTTP(tt.err))
		})
	}
}
