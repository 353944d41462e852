package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/docchat/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Two distinct IDs must collapse into one series.
	for _, id := range []string{"abc-123", "def-456"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `path="/documents/{id}"`)
	assert.NotContains(t, string(body), "abc-123")
	assert.NotContains(t, string(body), "def-456")
}

func TestRouteLabel_Unmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	assert.Equal(t, "unmatched", routeLabel(req))
}
