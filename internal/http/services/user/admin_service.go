package user

import (
	"context"
	"errors"

	"github.com/dropDatabas3/userhub/internal/audit"
	"github.com/dropDatabas3/userhub/internal/domain"
	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/internal/store"
)

const defaultPageSize = 20

// AdminService define operaciones administrativas sobre cuentas.
type AdminService interface {
	List(ctx context.Context, q dto.ListQuery) (dto.UserListResponse, error)
	// SetRole cambia el rol y refresca la sesión si está viva.
	SetRole(ctx context.Context, email, role string) (*domain.User, error)
}

type adminService struct {
	deps Deps
}

func NewAdminService(d Deps) AdminService {
	return &adminService{deps: d}
}

func (s *adminService) List(ctx context.Context, q dto.ListQuery) (dto.UserListResponse, error) {
	if err := q.Validate(); err != nil {
		return dto.UserListResponse{}, invalid(err)
	}
	if q.Limit == 0 {
		q.Limit = defaultPageSize
	}

	users, total, err := s.deps.Users.List(ctx, q.Limit, q.Offset)
	if err != nil {
		return dto.UserListResponse{}, dependency("store", err)
	}
	out := dto.UserListResponse{
		Users:  make([]*domain.User, 0, len(users)),
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	for i := range users {
		out.Users = append(out.Users, users[i].Sanitized())
	}
	return out, nil
}

func (s *adminService) SetRole(ctx context.Context, email, role string) (*domain.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.admin"),
		logger.Op("SetRole"),
	)

	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, ErrInvalidRole
	}
	u, err := s.deps.Users.FindByEmail(ctx, dto.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dependency("store", err)
	}

	updated, err := s.deps.Users.UpdateRole(ctx, u.ID, role)
	if err != nil {
		return nil, dependency("store", err)
	}
	live, err := s.deps.Sessions.Refresh(ctx, updated.Sanitized())
	if err != nil {
		return nil, dependency("session cache", err)
	}

	log.Info("role updated", logger.UserID(updated.ID), logger.Role(role), logger.Any("session_refreshed", live))
	audit.Log(ctx, audit.EventRoleChanged, logger.UserID(updated.ID), logger.Role(role))
	return updated.Sanitized(), nil
}
