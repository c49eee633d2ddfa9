package user

import (
	"context"
	"errors"

	"github.com/dropDatabas3/userhub/internal/audit"
	"github.com/dropDatabas3/userhub/internal/domain"
	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	"github.com/dropDatabas3/userhub/internal/metrics"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/internal/security/password"
	"github.com/dropDatabas3/userhub/internal/store"
)

// RegistrationService define registro con ticket de activación y su consumo.
type RegistrationService interface {
	// Register valida, arma el registro pendiente y envía el código por mail.
	// No persiste nada. Devuelve el token del ticket.
	Register(ctx context.Context, in dto.RegisterRequest) (string, error)
	// Activate verifica el ticket y crea el usuario verificado.
	Activate(ctx context.Context, in dto.ActivateRequest) (*domain.User, error)
}

type registrationService struct {
	deps Deps
}

func NewRegistrationService(d Deps) RegistrationService {
	return &registrationService{deps: d}
}

func (s *registrationService) Register(ctx context.Context, in dto.RegisterRequest) (token string, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.registration"),
		logger.Op("Register"),
	)
	defer func() { s.deps.Metrics.AuthEvent(metrics.EventRegister, err) }()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return "", invalid(err)
	}
	log = log.With(logger.Email(in.Email))

	// Email tomado => se corta acá, sin ticket ni mail
	if _, err := s.deps.Users.FindByEmail(ctx, in.Email); err == nil {
		return "", ErrUserAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", dependency("store", err)
	}

	if ok, reasons := s.deps.Policy.Validate(in.Password); !ok {
		return "", &WeakPasswordError{Reasons: reasons}
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return "", err
	}

	pending := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: &hash,
		Avatar:   domain.Avatar{URL: domain.DefaultAvatarURL},
		Role:     domain.RoleUser,
	}
	ticket, err := s.deps.Tokens.IssueActivation(pending)
	if err != nil {
		return "", err
	}

	if err := s.deps.Mailer.SendActivation(ctx, in.Email, in.Name, ticket.Code); err != nil {
		log.Warn("activation mail failed", logger.Err(err))
		return "", dependency("mail", err)
	}

	log.Info("activation ticket issued")
	audit.Log(ctx, audit.EventActivationIssued, audit.Email(in.Email))
	return ticket.Token, nil
}

func (s *registrationService) Activate(ctx context.Context, in dto.ActivateRequest) (u *domain.User, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.registration"),
		logger.Op("Activate"),
	)
	defer func() { s.deps.Metrics.AuthEvent(metrics.EventActivate, err) }()

	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	// jwtx.ErrInvalidOrExpiredToken / jwtx.ErrInvalidActivationCode pasan tal cual
	pending, err := s.deps.Tokens.VerifyActivation(in.ActivationToken, in.ActivationCode)
	if err != nil {
		return nil, err
	}
	log = log.With(logger.Email(pending.Email))

	if _, err := s.deps.Users.FindByEmail(ctx, pending.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, dependency("store", err)
	}

	nu := &domain.User{
		Name:       pending.Name,
		Email:      pending.Email,
		Password:   pending.Password,
		Avatar:     pending.Avatar,
		Role:       domain.RoleUser,
		IsVerified: true,
	}
	if err := s.deps.Users.Create(ctx, nu); err != nil {
		// dos activaciones concurrentes del mismo ticket
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, dependency("store", err)
	}

	log.Info("user activated", logger.UserID(nu.ID))
	audit.Log(ctx, audit.EventUserActivated, logger.UserID(nu.ID), audit.Email(nu.Email))
	return nu.Sanitized(), nil
}
