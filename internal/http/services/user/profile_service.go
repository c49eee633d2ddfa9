package user

import (
	"context"
	"errors"

	"github.com/dropDatabas3/userhub/internal/audit"
	"github.com/dropDatabas3/userhub/internal/domain"
	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	"github.com/dropDatabas3/userhub/internal/media"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/internal/security/password"
	"github.com/dropDatabas3/userhub/internal/store"
)

// ProfileService define lectura y mutaciones del perfil propio.
// Cada mutación: validar -> leer store -> mutar -> propagar al Session Cache.
type ProfileService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateInfo(ctx context.Context, userID string, in dto.UpdateInfoRequest) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID string, in dto.UpdatePasswordRequest) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, in dto.UpdateAvatarRequest) (*domain.User, error)
}

type profileService struct {
	deps Deps
}

func NewProfileService(d Deps) ProfileService {
	if d.Avatars == nil {
		d.Avatars = media.Disabled{}
	}
	return &profileService{deps: d}
}

func (s *profileService) load(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dependency("store", err)
	}
	return u, nil
}

// persisted traduce el resultado de un update y sincroniza la sesión.
func (s *profileService) persisted(ctx context.Context, u *domain.User, err error) (*domain.User, error) {
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailAlreadyExists
		}
		return nil, dependency("store", err)
	}
	snap := u.Sanitized()
	if err := s.deps.Sessions.Put(ctx, snap); err != nil {
		return nil, dependency("session cache", err)
	}
	return snap, nil
}

func (s *profileService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

func (s *profileService) UpdateInfo(ctx context.Context, userID string, in dto.UpdateInfoRequest) (*domain.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.profile"),
		logger.Op("UpdateInfo"),
		logger.UserID(userID),
	)

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	name, email := cur.Name, cur.Email
	if in.Name != nil {
		name = *in.Name
	}
	if in.Email != nil && *in.Email != cur.Email {
		if _, err := s.deps.Users.FindByEmail(ctx, *in.Email); err == nil {
			return nil, ErrEmailAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, dependency("store", err)
		}
		email = *in.Email
	}

	u, err := s.deps.Users.UpdateInfo(ctx, userID, name, email)
	if u, err = s.persisted(ctx, u, err); err != nil {
		return nil, err
	}
	log.Info("user info updated")
	if email != cur.Email {
		audit.Log(ctx, audit.EventEmailChanged, logger.UserID(userID), audit.Email(email))
	}
	return u, nil
}

func (s *profileService) UpdatePassword(ctx context.Context, userID string, in dto.UpdatePasswordRequest) (*domain.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.profile"),
		logger.Op("UpdatePassword"),
		logger.UserID(userID),
	)

	if in.CurrentPassword == "" {
		return nil, ErrMissingCurrentPassword
	}
	if in.NewPassword == "" {
		return nil, ErrMissingNewPassword
	}

	// el hash sale del store, nunca del snapshot cacheado
	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cur.HasPassword() {
		return nil, ErrSocialAccount
	}
	if !password.Verify(in.CurrentPassword, *cur.Password) {
		return nil, ErrInvalidCurrentPassword
	}
	if ok, reasons := s.deps.Policy.Validate(in.NewPassword); !ok {
		return nil, &WeakPasswordError{Reasons: reasons}
	}

	hash, err := password.Hash(in.NewPassword)
	if err != nil {
		return nil, err
	}
	u, err := s.deps.Users.UpdatePassword(ctx, userID, hash)
	if u, err = s.persisted(ctx, u, err); err != nil {
		return nil, err
	}
	log.Info("password updated")
	audit.Log(ctx, audit.EventPasswordChanged, logger.UserID(userID))
	return u, nil
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID string, in dto.UpdateAvatarRequest) (*domain.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.profile"),
		logger.Op("UpdateAvatar"),
		logger.UserID(userID),
	)

	if in.Avatar == "" {
		return nil, ErrMissingAvatar
	}

	cur, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// un payload rechazado no puede tocar el avatar vigente
	if err := s.deps.Avatars.Validate(in.Avatar); err != nil {
		return nil, mediaError(err)
	}

	// secuencial: borrar viejo -> subir nuevo -> persistir
	if cur.Avatar.PublicID != "" {
		if err := s.deps.Avatars.Delete(ctx, cur.Avatar.PublicID); err != nil {
			return nil, dependency("media", err)
		}
	}
	avatar, err := s.deps.Avatars.Upload(ctx, in.Avatar)
	if err != nil {
		return nil, mediaError(err)
	}

	u, err := s.deps.Users.UpdateAvatar(ctx, userID, avatar)
	if u, err = s.persisted(ctx, u, err); err != nil {
		return nil, err
	}
	log.Info("avatar updated", logger.String("public_id", avatar.PublicID))
	audit.Log(ctx, audit.EventAvatarChanged, logger.UserID(userID))
	return u, nil
}

func mediaError(err error) error {
	if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, media.ErrTooLarge) {
		return invalid(err)
	}
	return dependency("media", err)
}
