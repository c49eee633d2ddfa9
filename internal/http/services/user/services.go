// Package user contiene los services de /api/v1/users: registro y activación,
// sesión (login/logout/refresh/social), perfil y administración.
//
// Todas las mutaciones durables terminan sobrescribiendo el Session Entry con
// el usuario persistido: el cache nunca es el único escritor.
package user

import (
	"context"

	"github.com/dropDatabas3/userhub/internal/domain"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"github.com/dropDatabas3/userhub/internal/media"
	"github.com/dropDatabas3/userhub/internal/metrics"
	"github.com/dropDatabas3/userhub/internal/security/password"
	"github.com/dropDatabas3/userhub/internal/store"
)

// SessionStore es el Session Cache visto desde los services.
type SessionStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	Refresh(ctx context.Context, u *domain.User) (bool, error)
}

// TokenIssuer emite y verifica tickets y tokens.
type TokenIssuer interface {
	IssueActivation(pending *domain.User) (jwtx.ActivationTicket, error)
	VerifyActivation(token, code string) (*domain.User, error)
	IssuePair(u *domain.User) (jwtx.Pair, error)
	VerifyRefresh(token string) (*jwtx.UserClaims, error)
}

// ActivationMailer envía el código de activación.
type ActivationMailer interface {
	SendActivation(ctx context.Context, to, name, code string) error
}

// Deps contiene las dependencias de los services de usuario.
type Deps struct {
	Users    store.UserRepository
	Sessions SessionStore
	Tokens   TokenIssuer
	Mailer   ActivationMailer
	Avatars  media.AvatarHost // nil => media.Disabled
	Policy   password.Policy
	Metrics  *metrics.Recorder // nil => sin métricas
}

// Services agrupa los services del dominio user.
type Services struct {
	Registration RegistrationService
	Session      SessionService
	Profile      ProfileService
	Admin        AdminService
}

// NewServices crea el agregador.
func NewServices(d Deps) Services {
	if d.Avatars == nil {
		d.Avatars = media.Disabled{}
	}
	return Services{
		Registration: NewRegistrationService(d),
		Session:      NewSessionService(d),
		Profile:      NewProfileService(d),
		Admin:        NewAdminService(d),
	}
}

// AuthResult es lo que devuelven los flujos que emiten tokens.
type AuthResult struct {
	User    *domain.User
	Tokens  jwtx.Pair
	Created bool // social auth: cuenta nueva
}

// openSession emite el par y escribe el Session Entry.
func openSession(ctx context.Context, d Deps, u *domain.User) (AuthResult, error) {
	snap := u.Sanitized()
	pair, err := d.Tokens.IssuePair(snap)
	if err != nil {
		return AuthResult{}, err
	}
	if err := d.Sessions.Put(ctx, snap); err != nil {
		return AuthResult{}, dependency("session cache", err)
	}
	return AuthResult{User: snap, Tokens: pair}, nil
}
