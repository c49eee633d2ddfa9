package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/userhub/internal/http/controllers/health"
)

// registerHealthRoutes registra /test, /healthz y /readyz. Públicos.
func registerHealthRoutes(r chi.Router, c *ctrl.Controllers) {
	r.Get("/test", c.Health.Test)
	r.Get("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)
}
