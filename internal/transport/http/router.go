// Package httptransport assembles the public HTTP surface: middleware, the
// lab endpoints, health and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/metrics"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/httputil"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/middleware/metadata"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/middleware/ratelimit"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/middleware/requesttime"
)

// Registrar mounts a group of endpoints.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Config carries what the router needs from main.
type Config struct {
	Logger             *slog.Logger
	Gatherer           prometheus.Gatherer
	HTTPMetrics        *metrics.HTTP
	RateLimitPerMinute int
	Checks             map[string]HealthCheck
}

// NewRouter wires all public endpoints. Health and metrics stay outside
// the rate limit so probes and scrapes are never throttled.
func NewRouter(cfg Config, handlers ...Registrar) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(metadata.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Recoverer)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", healthHandler(cfg.Checks))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(ratelimit.Config{
			Requests: cfg.RateLimitPerMinute,
			Window:   time.Minute,
			Logger:   cfg.Logger,
		}))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
