package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	HealthPath = "/_health"
	StatsPath  = "/_stats"
)

// Interceptor wraps a handler, e.g. origin.Gate.Middleware.
type Interceptor func(http.Handler) http.Handler

// NewRouter mounts the health and stats endpoints and sends every other path,
// whatever the method, to fallback. gate runs before routing, so OPTIONS on
// any path (the special ones included) is answered by it.
func NewRouter(gate Interceptor, fallback, stats http.Handler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request completed")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(gate)
	r.Use(middleware.GetHead)

	r.Get(HealthPath, health)
	r.Method(http.MethodGet, StatsPath, stats)
	r.NotFound(fallback.ServeHTTP)

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
