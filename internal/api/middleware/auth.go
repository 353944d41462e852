package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/docchat/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthValidator checks an API key token and resolves it to a user ID.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", "invalid authorization format"
	}
	return token, ""
}

// APIKeyAuth rejects requests without a valid API key and stores the
// resolved user ID in the request context.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, reason := bearerToken(r)
			if reason != "" {
				api.Error(w, http.StatusUnauthorized, reason)
				return
			}

			userID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID, or "" before auth has run.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
