package user

import (
	"net/http"

	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	httperrors "github.com/dropDatabas3/userhub/internal/http/errors"
	"github.com/dropDatabas3/userhub/internal/http/helpers"
	mw "github.com/dropDatabas3/userhub/internal/http/middlewares"
	svc "github.com/dropDatabas3/userhub/internal/http/services/user"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// CookieWriter escribe y expira las cookies de sesión.
type CookieWriter interface {
	SetCookies(w http.ResponseWriter, p jwtx.Pair)
	ClearTokens(w http.ResponseWriter)
}

// SessionController maneja login, logout, refresh y social auth.
type SessionController struct {
	service svc.SessionService
	cookies CookieWriter
	maxBody int64
}

func NewSessionController(service svc.SessionService, cookies CookieWriter, maxBody int64) *SessionController {
	return &SessionController{service: service, cookies: cookies, maxBody: maxBody}
}

// Login maneja POST /api/v1/users/login
func (c *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req, c.maxBody); err != nil {
		writeUserError(w, log, err)
		return
	}

	res, err := c.service.Login(ctx, req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}

	c.cookies.SetCookies(w, res.Tokens)
	helpers.WriteData(w, http.StatusOK, "User logged in successfully", res.User)
}

// Logout maneja GET /api/v1/users/logout (requiere sesión).
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.Logout"))

	c.cookies.ClearTokens(w)
	if err := c.service.Logout(ctx, mw.GetUserID(ctx)); err != nil {
		writeUserError(w, log, err)
		return
	}

	helpers.WriteData(w, http.StatusOK, "User logged out successfully", nil)
}

// Refresh maneja GET /api/v1/users/refresh-token
func (c *SessionController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.Refresh"))

	ck, err := r.Cookie(jwtx.RefreshCookie)
	if err != nil || ck.Value == "" {
		httperrors.WriteError(w, httperrors.ErrRefreshFailed)
		return
	}

	res, err := c.service.Refresh(ctx, ck.Value)
	if err != nil {
		writeUserError(w, log, err)
		return
	}

	c.cookies.SetCookies(w, res.Tokens)
	helpers.WriteData(w, http.StatusOK, "Token refreshed successfully", nil)
}

// SocialAuth maneja POST /api/v1/users/social-auth
func (c *SessionController) SocialAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.SocialAuth"))

	var req dto.SocialAuthRequest
	if err := helpers.ReadJSON(w, r, &req, c.maxBody); err != nil {
		writeUserError(w, log, err)
		return
	}

	res, err := c.service.SocialAuth(ctx, req)
	if err != nil {
		writeUserError(w, log, err)
		return
	}

	c.cookies.SetCookies(w, res.Tokens)
	if res.Created {
		helpers.WriteData(w, http.StatusCreated, "User created successfully", res.User)
		return
	}
	helpers.WriteData(w, http.StatusOK, "User logged in successfully", res.User)
}
