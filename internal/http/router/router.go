// Package router arma el chi.Router de la API.
package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/userhub/internal/http/controllers/health"
	userctrl "github.com/dropDatabas3/userhub/internal/http/controllers/user"
	httperrors "github.com/dropDatabas3/userhub/internal/http/errors"
	mw "github.com/dropDatabas3/userhub/internal/http/middlewares"
	"github.com/dropDatabas3/userhub/internal/metrics"
	"github.com/dropDatabas3/userhub/internal/rate"
)

// UsersPrefix es el prefijo de la API de usuarios.
const UsersPrefix = "/api/v1/users"

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Users  *userctrl.Controllers
	Health *healthctrl.Controllers

	// Auth gate
	Verifier mw.AccessVerifier
	Sessions mw.SessionReader

	RateLimiter rate.Limiter // nil => sin rate limiting
	CORSOrigins []string
	Metrics     *metrics.Recorder // nil => sin /metrics
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(d.Metrics),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound.
			WithMessage(fmt.Sprintf("Requested route %s was not found", r.URL.Path)))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		registerHealthRoutes(r, d.Health)
	}
	if d.Users != nil {
		r.Route(UsersPrefix, func(r chi.Router) {
			registerUserRoutes(r, d)
		})
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	return r
}
