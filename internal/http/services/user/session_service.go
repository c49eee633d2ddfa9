package user

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/userhub/internal/audit"
	"github.com/dropDatabas3/userhub/internal/domain"
	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	"github.com/dropDatabas3/userhub/internal/metrics"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/internal/security/password"
	"github.com/dropDatabas3/userhub/internal/session"
	"github.com/dropDatabas3/userhub/internal/store"
)

// SessionService define login, logout, refresh y social auth.
type SessionService interface {
	Login(ctx context.Context, in dto.LoginRequest) (AuthResult, error)
	// Logout borra el Session Entry. Idempotente.
	Logout(ctx context.Context, userID string) error
	// Refresh reemite el par para el usuario cacheado.
	Refresh(ctx context.Context, refreshToken string) (AuthResult, error)
	// SocialAuth crea la cuenta si no existe y abre sesión.
	SocialAuth(ctx context.Context, in dto.SocialAuthRequest) (AuthResult, error)
}

type sessionService struct {
	deps Deps
}

func NewSessionService(d Deps) SessionService {
	return &sessionService{deps: d}
}

func (s *sessionService) Login(ctx context.Context, in dto.LoginRequest) (res AuthResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.session"),
		logger.Op("Login"),
	)
	defer func() { s.deps.Metrics.AuthEvent(metrics.EventLogin, err) }()

	in.Normalize()
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, ErrMissingCredentials
	}

	u, err := s.deps.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, dependency("store", err)
	}
	log = log.With(logger.UserID(u.ID))

	// cuenta social: sin hash no hay login por password
	if !u.HasPassword() || !password.Verify(in.Password, *u.Password) {
		log.Debug("password check failed")
		audit.Log(ctx, audit.EventLoginFailed, logger.UserID(u.ID), audit.Email(in.Email))
		return AuthResult{}, ErrInvalidCredentials
	}

	res, err = openSession(ctx, s.deps, u)
	if err != nil {
		return AuthResult{}, err
	}
	log.Info("user logged in")
	audit.Log(ctx, audit.EventLoginSucceeded, logger.UserID(u.ID))
	return res, nil
}

func (s *sessionService) Logout(ctx context.Context, userID string) (err error) {
	defer func() { s.deps.Metrics.AuthEvent(metrics.EventLogout, err) }()
	if userID == "" {
		return nil
	}
	if err := s.deps.Sessions.Delete(ctx, userID); err != nil {
		return dependency("session cache", err)
	}
	logger.From(ctx).Info("user logged out",
		logger.Layer("service"),
		logger.Op("Logout"),
		logger.UserID(userID),
	)
	audit.Log(ctx, audit.EventLogout, logger.UserID(userID))
	return nil
}

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (res AuthResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.session"),
		logger.Op("Refresh"),
	)
	defer func() { s.deps.Metrics.AuthEvent(metrics.EventRefresh, err) }()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return AuthResult{}, ErrRefreshFailed
	}
	claims, err := s.deps.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return AuthResult{}, refreshFailed(err)
	}

	cached, err := s.deps.Sessions.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			log.Debug("no live session", logger.UserID(claims.Subject))
			return AuthResult{}, ErrRefreshFailed
		}
		return AuthResult{}, dependency("session cache", err)
	}

	// reescribe el entry: renueva el TTL junto con el refresh token
	return openSession(ctx, s.deps, cached)
}

func (s *sessionService) SocialAuth(ctx context.Context, in dto.SocialAuthRequest) (res AuthResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.session"),
		logger.Op("SocialAuth"),
	)
	defer func() { s.deps.Metrics.AuthEvent(metrics.EventSocial, err) }()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return AuthResult{}, invalid(err)
	}

	u, err := s.deps.Users.FindByEmail(ctx, in.Email)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		u, created, err = s.createSocial(ctx, in)
		if err != nil {
			return AuthResult{}, err
		}
	default:
		return AuthResult{}, dependency("store", err)
	}

	res, err = openSession(ctx, s.deps, u)
	if err != nil {
		return AuthResult{}, err
	}
	res.Created = created
	if created {
		audit.Log(ctx, audit.EventSocialCreated, logger.UserID(u.ID), audit.Email(u.Email))
	}
	log.Info("social auth", logger.UserID(u.ID), logger.Any("created", created))
	return res, nil
}

func (s *sessionService) createSocial(ctx context.Context, in dto.SocialAuthRequest) (*domain.User, bool, error) {
	avatar := domain.Avatar{URL: in.Avatar}
	if avatar.URL == "" {
		avatar.URL = domain.DefaultAvatarURL
	}
	nu := &domain.User{
		Name:       in.Name,
		Email:      in.Email,
		Avatar:     avatar,
		Role:       domain.RoleUser,
		IsVerified: true,
	}
	err := s.deps.Users.Create(ctx, nu)
	if err == nil {
		return nu, true, nil
	}
	if !errors.Is(err, store.ErrDuplicateEmail) {
		return nil, false, dependency("store", err)
	}
	// otro request la creó en el medio
	u, err := s.deps.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, false, dependency("store", err)
	}
	return u, false, nil
}
