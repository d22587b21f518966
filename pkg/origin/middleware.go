package origin

import (
	"net/http"
)

const (
	allowMethods = "GET, OPTIONS"
	allowHeaders = "Content-Type"
	// preflight answers may be cached by browsers for a day
	preflightMaxAge = "86400"

	forbiddenBody = "Origin not allowed"
)

// Middleware wraps next with origin enforcement.
//
// OPTIONS requests are answered here: 204 with CORS headers for an allowed
// origin, 403 otherwise. Other requests with a disallowed Origin get 403; with
// no Origin they pass through untouched; with an allowed one they pass through
// and the response carries Access-Control-Allow-Origin, -Methods and Vary: Origin.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values, present := r.Header["Origin"]
		origin := ""
		if present && len(values) > 0 {
			origin = values[0]
		}

		if r.Method == http.MethodOptions {
			if present && g.IsAllowed(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				h.Set("Access-Control-Max-Age", preflightMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			forbid(w)
			return
		}

		if !present {
			next.ServeHTTP(w, r)
			return
		}
		if !g.IsAllowed(origin) {
			g.log.Warn().Str("origin", origin).Str("path", r.URL.Path).Msg("Blocked request from origin")
			forbid(w)
			return
		}

		// headers set before next runs are sent with whatever next writes
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Vary", "Origin")
		next.ServeHTTP(w, r)
	})
}

func forbid(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(forbiddenBody))
}
