package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/userhub/internal/domain"
	httperrors "github.com/dropDatabas3/userhub/internal/http/errors"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/internal/session"
)

// =================================================================================
// AUTH GATE
// =================================================================================

// AccessVerifier valida firma y expiración del access token.
type AccessVerifier interface {
	VerifyAccess(token string) (*jwtx.UserClaims, error)
}

// SessionReader resuelve la sesión viva del usuario.
type SessionReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// RequireSession exige cookie access_token válida Y una sesión viva en el cache.
// Un token firmado cuya sesión fue borrada (logout) se rechaza.
func RequireSession(verifier AccessVerifier, sessions SessionReader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if ck, err := r.Cookie(jwtx.AccessCookie); err == nil {
				token = strings.TrimSpace(ck.Value)
			}
			if token == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthenticated)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil || claims.Subject == "" {
				httperrors.WriteError(w, httperrors.ErrInvalidAccessToken.WithCause(err))
				return
			}

			u, err := sessions.Get(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					httperrors.WriteError(w, httperrors.ErrUserNotFound.WithMessage("Please login to access this resource"))
					return
				}
				logger.From(r.Context()).Warn("session lookup failed",
					logger.Layer("middleware"),
					logger.UserID(claims.Subject),
					logger.Err(err),
				)
				httperrors.WriteError(w, httperrors.Dependency(err))
				return
			}

			ctx := WithUser(r.Context(), u)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(u.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole exige que el usuario autenticado tenga alguno de los roles.
// Debe ir después de RequireSession.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r.Context())
			if u == nil {
				httperrors.WriteError(w, httperrors.ErrUnauthenticated)
				return
			}
			if !u.HasRole(roles...) {
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("Role: "+u.Role+" is not allowed to access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
