// Package health contiene el controller de health checks y smoke test.
package health

import (
	"net/http"

	"github.com/dropDatabas3/userhub/internal/http/helpers"
	svc "github.com/dropDatabas3/userhub/internal/http/services/health"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// HealthController maneja /test, /healthz y /readyz.
type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Test maneja GET /test
func (c *HealthController) Test(w http.ResponseWriter, r *http.Request) {
	helpers.WriteData(w, http.StatusOK, "Test API successful", nil)
}

// Healthz maneja GET /healthz (liveness: el proceso responde).
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := c.service.Check(ctx)
	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)

	log.Debug("health check completed", logger.String("status", resp.Status))
}
