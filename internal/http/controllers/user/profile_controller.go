package user

import (
	"net/http"

	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	"github.com/dropDatabas3/userhub/internal/http/helpers"
	mw "github.com/dropDatabas3/userhub/internal/http/middlewares"
	svc "github.com/dropDatabas3/userhub/internal/http/services/user"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// ProfileController maneja /me y los PATCH de perfil. Todas las rutas requieren sesión.
type ProfileController struct {
	service       svc.ProfileService
	maxBody       int64
	maxAvatarBody int64
}

func NewProfileController(service svc.ProfileService, maxBody, maxAvatarBody int64) *ProfileController {
	if maxAvatarBody < maxBody {
		maxAvatarBody = maxBody
	}
	return &ProfileController{service: service, maxBody: maxBody, maxAvatarBody: maxAvatarBody}
}

// Me maneja GET /api/v1/users/me
func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProfileController.Me"))

	u, err := c.service.Me(ctx, mw.GetUserID(ctx))
	if err != nil {
		writeUserError(w, log, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "User details retrieved successfully", u)
}

// UpdateInfo maneja PATCH /api/v1/users/update-user-info
func (c *ProfileController) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProfileController.UpdateInfo"))

	var req dto.UpdateInfoRequest
	if err := helpers.ReadStrictJSON(w, r, &req, c.maxBody, dto.UpdateInfoFields...); err != nil {
		writeUserError(w, log, err)
		return
	}

	u, err := c.service.UpdateInfo(ctx, mw.GetUserID(ctx), req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "User info updated successfully", u)
}

// UpdatePassword maneja PATCH /api/v1/users/update-user-password
func (c *ProfileController) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProfileController.UpdatePassword"))

	var req dto.UpdatePasswordRequest
	if err := helpers.ReadStrictJSON(w, r, &req, c.maxBody, dto.UpdatePasswordFields...); err != nil {
		writeUserError(w, log, err)
		return
	}

	u, err := c.service.UpdatePassword(ctx, mw.GetUserID(ctx), req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Password updated successfully", u)
}

// UpdateAvatar maneja PATCH /api/v1/users/update-user-avatar
func (c *ProfileController) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProfileController.UpdateAvatar"))

	var req dto.UpdateAvatarRequest
	if err := helpers.ReadStrictJSON(w, r, &req, c.maxAvatarBody, dto.UpdateAvatarFields...); err != nil {
		writeUserError(w, log, err)
		return
	}

	u, err := c.service.UpdateAvatar(ctx, mw.GetUserID(ctx), req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Avatar updated successfully", u)
}
