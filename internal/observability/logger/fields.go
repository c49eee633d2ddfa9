package logger

import (
	"go.uber.org/zap"
)

// Constructores de campos estándar. Usar estos en lugar de zap.String con
// keys sueltas mantiene los nombres consistentes entre capas.

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }

// Route es el patrón chi resuelto (ej: /api/v1/users/me), no el path crudo.
func Route(v string) zap.Field     { return zap.String("route", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// ---- Cuenta ----

func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email sin enmascarar; para eventos persistentes usar audit.Email.
func Email(v string) zap.Field { return zap.String("email", v) }
func Role(v string) zap.Field  { return zap.String("role", v) }

// ---- Sistema ----

// Component módulo que loguea (ej: "user.session", "server.wiring").
func Component(v string) zap.Field { return zap.String("component", v) }

// Op operación en curso, "Tipo.Método" en controllers.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer capa: controller | service | repository.
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field         { return zap.Error(err) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func String(key, v string) zap.Field  { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
