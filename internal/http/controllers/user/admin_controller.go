package user

import (
	"net/http"
	"strconv"

	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	httperrors "github.com/dropDatabas3/userhub/internal/http/errors"
	"github.com/dropDatabas3/userhub/internal/http/helpers"
	svc "github.com/dropDatabas3/userhub/internal/http/services/user"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// AdminController maneja las rutas detrás de RequireRole("admin").
type AdminController struct {
	service svc.AdminService
}

func NewAdminController(service svc.AdminService) *AdminController {
	return &AdminController{service: service}
}

// ListUsers maneja GET /api/v1/users/admin/users?limit=&offset=
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AdminController.ListUsers"))

	var q dto.ListQuery
	var err error
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("limit must be an integer"))
		return
	}
	if q.Offset, err = queryInt(r, "offset"); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("offset must be an integer"))
		return
	}

	resp, err := c.service.List(ctx, q)
	if err != nil {
		writeUserError(w, log, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Users retrieved successfully", resp)
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
