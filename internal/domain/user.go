// Package domain contiene las entidades persistidas y cacheadas.
package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles conocidos.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultAvatarURL es el placeholder asignado a cuentas registradas con password.
const DefaultAvatarURL = "../images/profile.png"

// Avatar referencia una imagen hosteada. PublicID vacío => imagen no gestionada por nosotros.
type Avatar struct {
	PublicID string `bun:"public_id" json:"public_id"`
	URL      string `bun:"url" json:"url"`
}

// User es la cuenta persistida. Password es nil para cuentas creadas por social login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email,notnull,unique" json:"email"`
	Password   *string   `bun:"password" json:"password,omitempty"`
	Avatar     Avatar    `bun:"embed:avatar_" json:"avatar"`
	Role       string    `bun:"role,notnull" json:"role"`
	IsVerified bool      `bun:"is_verified,notnull" json:"isVerified"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// HasPassword indica si la cuenta admite login con password.
func (u *User) HasPassword() bool {
	return u != nil && u.Password != nil && *u.Password != ""
}

// Sanitized devuelve una copia sin el hash de password. Es la forma que viaja
// en tokens, en el Session Cache y en respuestas HTTP.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = nil
	return &cp
}

// HasRole indica si el rol del usuario está en roles.
func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
