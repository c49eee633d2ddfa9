package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/userhub/internal/domain"
	mw "github.com/dropDatabas3/userhub/internal/http/middlewares"
)

// registerUserRoutes registra las rutas bajo /api/v1/users.
func registerUserRoutes(r chi.Router, d Deps) {
	c := d.Users

	// Credenciales: no-store + rate limit por IP y ruta
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.RateLimiter,
			KeyFunc: mw.IPPathRateKey,
		}))

		r.Post("/register", c.Registration.Register)
		r.Post("/activate-user", c.Registration.Activate)
		r.Post("/login", c.Session.Login)
		r.Post("/social-auth", c.Session.SocialAuth)
	})

	// Refresh: sólo la cookie refresh_token, sin auth gate
	r.With(mw.WithNoStore()).Get("/refresh-token", c.Session.Refresh)

	// Sesión requerida
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Use(mw.RequireSession(d.Verifier, d.Sessions))

		r.Get("/me", c.Profile.Me)
		r.Get("/logout", c.Session.Logout)
		r.Patch("/update-user-info", c.Profile.UpdateInfo)
		r.Patch("/update-user-password", c.Profile.UpdatePassword)
		r.Patch("/update-user-avatar", c.Profile.UpdateAvatar)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(domain.RoleAdmin))
			r.Get("/admin/users", c.Admin.ListUsers)
		})
	})
}
