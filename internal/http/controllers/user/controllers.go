// Package user contiene los controllers HTTP de /api/v1/users.
package user

import svc "github.com/dropDatabas3/userhub/internal/http/services/user"

// Deps parámetros de borde de los controllers.
type Deps struct {
	Cookies       CookieWriter
	MaxBody       int64
	MaxAvatarBody int64
}

// Controllers agrupa todos los controllers del dominio user.
type Controllers struct {
	Registration *RegistrationController
	Session      *SessionController
	Profile      *ProfileController
	Admin        *AdminController
}

// NewControllers crea el agregador de controllers user.
func NewControllers(s svc.Services, d Deps) *Controllers {
	return &Controllers{
		Registration: NewRegistrationController(s.Registration, d.MaxBody),
		Session:      NewSessionController(s.Session, d.Cookies, d.MaxBody),
		Profile:      NewProfileController(s.Profile, d.MaxBody, d.MaxAvatarBody),
		Admin:        NewAdminController(s.Admin),
	}
}
