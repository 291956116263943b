// Package ratelimit throttles requests per client IP.
package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/httputil"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/requestcontext"
)

// Config holds the limit for one group of routes. A zero Requests disables
// limiting.
type Config struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// Middleware limits requests per client IP and answers 429 with the usual
// error body once the window is exhausted.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(clientKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.WarnContext(r.Context(), "rate limit exceeded",
					"request_id", requestcontext.RequestID(r.Context()),
					"ip", requestcontext.ClientIP(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded, please try again later"))
		}),
	)
}

// clientKey prefers the IP resolved by the metadata middleware.
func clientKey(r *http.Request) (string, error) {
	if ip := requestcontext.ClientIP(r.Context()); ip != "" {
		return ip, nil
	}
	return httprate.KeyByIP(r)
}
