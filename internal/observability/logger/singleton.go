package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init inicializa el logger singleton con la configuración dada.
// Es idempotente: solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L retorna el logger singleton.
// Si Init() no fue llamado, crea un logger por defecto (development, info).
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "development", Level: "info"})
	}
	return instance
}

// StdLogger adapta el singleton a librerías que esperan Printf/Fatalf (ej: goose).
type StdLogger struct {
	s *zap.SugaredLogger
}

// Std retorna un StdLogger nombrado.
func Std(name string) StdLogger {
	return StdLogger{s: L().Named(name).Sugar()}
}

func (l StdLogger) Printf(format string, v ...any) {
	l.s.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l StdLogger) Fatalf(format string, v ...any) {
	l.s.Fatalf(strings.TrimRight(format, "\n"), v...)
}

// Named retorna un logger con un nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushea cualquier buffer pendiente.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
