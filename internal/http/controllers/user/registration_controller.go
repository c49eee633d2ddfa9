package user

import (
	"fmt"
	"net/http"

	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	"github.com/dropDatabas3/userhub/internal/http/helpers"
	svc "github.com/dropDatabas3/userhub/internal/http/services/user"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// RegistrationController maneja /register y /activate-user.
type RegistrationController struct {
	service svc.RegistrationService
	maxBody int64
}

func NewRegistrationController(service svc.RegistrationService, maxBody int64) *RegistrationController {
	return &RegistrationController{service: service, maxBody: maxBody}
}

// Register maneja POST /api/v1/users/register
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegistrationController.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req, c.maxBody); err != nil {
		writeUserError(w, log, err)
		return
	}

	token, err := c.service.Register(ctx, req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}

	helpers.WriteData(w, http.StatusCreated,
		fmt.Sprintf("Please check your email: %s to activate your account", dto.NormalizeEmail(req.Email)),
		token)
}

// Activate maneja POST /api/v1/users/activate-user
func (c *RegistrationController) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegistrationController.Activate"))

	var req dto.ActivateRequest
	if err := helpers.ReadJSON(w, r, &req, c.maxBody); err != nil {
		writeUserError(w, log, err)
		return
	}

	u, err := c.service.Activate(ctx, req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}

	helpers.WriteData(w, http.StatusCreated, "User created successfully", u)
}
