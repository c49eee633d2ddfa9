package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/userhub/internal/metrics"
)

// WithMetrics registra conteo y latencia por ruta (patrón chi, no path crudo).
func WithMetrics(rec *metrics.Recorder) Middleware {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := recorderFor(w)
			rec.Inflight(1)
			defer rec.Inflight(-1)

			next.ServeHTTP(sr, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			rec.ObserveRequest(r.Method, route, sr.status, time.Since(start))
		})
	}
}
