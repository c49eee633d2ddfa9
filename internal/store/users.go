package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/userhub/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// UserRepository define las operaciones sobre usuarios.
type UserRepository interface {
	// FindByEmail busca por email exacto (ya normalizado). ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID busca por ID. ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Create persiste u. Asigna ID y timestamps si faltan. ErrDuplicateEmail si el email existe.
	Create(ctx context.Context, u *domain.User) error

	// UpdateInfo reemplaza nombre y email y devuelve el usuario persistido.
	UpdateInfo(ctx context.Context, id, name, email string) (*domain.User, error)

	// UpdatePassword reemplaza el hash.
	UpdatePassword(ctx context.Context, id, hash string) (*domain.User, error)

	// UpdateAvatar reemplaza la referencia de avatar.
	UpdateAvatar(ctx context.Context, id string, avatar domain.Avatar) (*domain.User, error)

	// UpdateRole reemplaza el rol.
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)

	// List pagina usuarios por fecha de creación descendente y devuelve el total.
	List(ctx context.Context, limit, offset int) ([]domain.User, int, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error
}

// Users implementa UserRepository sobre bun.
type Users struct {
	db  bun.IDB
	now func() time.Time
}

// NewUsers crea el repositorio.
func NewUsers(db bun.IDB) *Users {
	return &Users{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := new(domain.User)
	err := r.db.NewSelect().Model(u).Where("u.email = ?", email).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := new(domain.User)
	err := r.db.NewSelect().Model(u).Where("u.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *Users) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(u).Exec(ctx); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *Users) UpdateInfo(ctx context.Context, id, name, email string) (*domain.User, error) {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("name = ?", name).Set("email = ?", email)
	})
}

func (r *Users) UpdatePassword(ctx context.Context, id, hash string) (*domain.User, error) {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("password = ?", hash)
	})
}

func (r *Users) UpdateAvatar(ctx context.Context, id string, avatar domain.Avatar) (*domain.User, error) {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("avatar_public_id = ?", avatar.PublicID).Set("avatar_url = ?", avatar.URL)
	})
}

func (r *Users) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("role = ?", role)
	})
}

func (r *Users) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var users []domain.User
	total, err := r.db.NewSelect().
		Model(&users).
		Order("u.created_at DESC", "u.id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	return users, total, nil
}

func (r *Users) Ping(ctx context.Context) error {
	var one int
	return r.db.NewRaw("SELECT 1").Scan(ctx, &one)
}

// update aplica set sobre el usuario id y relee el resultado persistido.
func (r *Users) update(ctx context.Context, id string, set func(*bun.UpdateQuery) *bun.UpdateQuery) (*domain.User, error) {
	q := r.db.NewUpdate().
		Model((*domain.User)(nil)).
		Set("updated_at = ?", r.now()).
		Where("id = ?", id)

	res, err := set(q).Exec(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// mapErr traduce errores de driver a errores del paquete.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return ErrDuplicateEmail
	}
	// sqlite (modernc / mattn) no exponen un tipo común
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("store: %w", err)
}
