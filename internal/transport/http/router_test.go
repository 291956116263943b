package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/metrics"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestNewRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	dbErr := errors.New("connection refused")
	router := NewRouter(Config{
		Gatherer:           reg,
		HTTPMetrics:        metrics.NewHTTP(reg),
		RateLimitPerMinute: 1,
		Checks: map[string]HealthCheck{
			"store": func(context.Context) error { return nil },
		},
	}, pingHandler{})

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("handlers are mounted behind the rate limit", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve("/ping").Code)
		assert.Equal(t, http.StatusTooManyRequests, serve("/ping").Code)
	})

	t.Run("health is not rate limited", func(t *testing.T) {
		for range 3 {
			w := serve("/healthz")
			require.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("metrics expose request counters", func(t *testing.T) {
		w := serve("/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "labmanager_http_requests_total")
	})

	t.Run("unknown routes use the error body", func(t *testing.T) {
		w := serve("/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_found", body["error"])
	})

	t.Run("a failing check degrades health", func(t *testing.T) {
		degraded := NewRouter(Config{Checks: map[string]HealthCheck{
			"redis": func(context.Context) error { return dbErr },
		}})
		w := httptest.NewRecorder()
		degraded.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}
