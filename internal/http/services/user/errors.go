package user

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de negocio. Los controllers los traducen a AppError.
var (
	ErrMissingCredentials     = errors.New("missing email or password")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrSocialAccount          = errors.New("account has no password")
	ErrMissingCurrentPassword = errors.New("missing current password")
	ErrMissingNewPassword     = errors.New("missing new password")
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	ErrMissingAvatar          = errors.New("missing avatar")
	ErrRefreshFailed          = errors.New("couldn't refresh token")
	ErrInvalidRole            = errors.New("invalid role")
)

// ValidationError payload inválido (formato o campos requeridos).
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// WeakPasswordError la password no cumple la policy configurada.
type WeakPasswordError struct {
	Reasons []string
}

func (e *WeakPasswordError) Error() string {
	return "password does not meet policy: " + strings.Join(e.Reasons, ",")
}

// DependencyError falla de un colaborador externo (store, cache, mail, media).
// El mensaje expuesto es el del error subyacente.
type DependencyError struct {
	Dep string
	Err error
}

func (e *DependencyError) Error() string { return e.Err.Error() }
func (e *DependencyError) Unwrap() error { return e.Err }

func dependency(dep string, err error) error {
	return &DependencyError{Dep: dep, Err: err}
}

// refreshFailed conserva la causa para logs sin perder el sentinel.
func refreshFailed(cause error) error {
	if cause == nil {
		return ErrRefreshFailed
	}
	return fmt.Errorf("%w: %v", ErrRefreshFailed, cause)
}
