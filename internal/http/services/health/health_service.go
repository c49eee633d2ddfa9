// Package health contiene el service de readiness.
package health

import (
	"context"
	"sort"
	"time"

	dto "github.com/dropDatabas3/userhub/internal/http/dto/health"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Check es un probe nombrado (ej: "store", "cache").
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Deps struct {
	Checks  []Check
	Version string
	Timeout time.Duration // por probe; default 2s
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	sort.SliceStable(deps.Checks, func(i, j int) bool { return deps.Checks[i].Name < deps.Checks[j].Name })
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	resp := dto.HealthResponse{
		Status:     "ready",
		Version:    s.deps.Version,
		Components: make(map[string]string, len(s.deps.Checks)),
		Timestamp:  time.Now().UTC(),
	}
	for _, c := range s.deps.Checks {
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		err := c.Fn(cctx)
		cancel()
		if err != nil {
			log.Warn("probe failed", logger.String("probe", c.Name), logger.Err(err))
			resp.Components[c.Name] = "error"
			resp.Status = "unavailable"
			continue
		}
		resp.Components[c.Name] = "ok"
	}
	return resp
}
