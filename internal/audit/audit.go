// Package audit emite la traza de eventos de cuenta (alta, login, cambios de
// credenciales y rol) por un logger nombrado "audit".
package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

// Eventos auditados.
const (
	EventActivationIssued = "user.activation_issued"
	EventUserActivated    = "user.activated"
	EventLoginSucceeded   = "auth.login_succeeded"
	EventLoginFailed      = "auth.login_failed"
	EventLogout           = "auth.logout"
	EventSocialCreated    = "auth.social_created"
	EventEmailChanged     = "user.email_changed"
	EventPasswordChanged  = "user.password_changed"
	EventAvatarChanged    = "user.avatar_changed"
	EventRoleChanged      = "user.role_changed"
)

// Log escribe un evento usando el logger del request (request_id incluido).
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append([]zap.Field{zap.String("event", event)}, fields...)...)
}

// Email es el campo de email enmascarado para eventos de audit.
func Email(s string) zap.Field {
	return zap.String("email", MaskEmail(s))
}

// MaskEmail deja la primera letra del usuario y del dominio: a…@e….com
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	local, dom := s[:i], s[i+1:]
	if len(local) > 1 {
		local = local[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return local + "@" + strings.Join(parts, ".")
}
