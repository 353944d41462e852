package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	userID string
	err    error
}

func (s *stubValidator) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.userID, nil
}

func protectedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth_Success(t *testing.T) {
	mw := APIKeyAuth(&stubValidator{userID: "user-1"})
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer dcc_token")
	rec := httptest.NewRecorder()

	mw(protectedHandler(t, "user-1")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	mw := APIKeyAuth(&stubValidator{userID: "user-1"})
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()

	mw(protectedHandler(t, "")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAPIKeyAuth_WrongScheme(t *testing.T) {
	mw := APIKeyAuth(&stubValidator{userID: "user-1"})
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	mw(protectedHandler(t, "")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	mw := APIKeyAuth(&stubValidator{err: domain.ErrInvalidAPIKey})
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer dcc_bad")
	rec := httptest.NewRecorder()

	mw(protectedHandler(t, "")).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")
}

func TestGetUserID_Empty(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}
