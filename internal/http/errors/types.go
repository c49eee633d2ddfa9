package errors

import (
	"errors"
	"fmt"
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// AppError es el error tipado que viaja hasta el borde HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // usado para el header
	Err        error  `json:"-"` // causa original, sólo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError traduce cualquier error a AppError. Es el único punto de traducción.
//   - *AppError (en cualquier nivel de wrapping) se devuelve tal cual
//   - errores de JWT => 400 con mensaje de re-login
//   - el resto => 500 genérico conservando la causa
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	case isJWTError(err):
		return ErrTokenInvalid.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

func isJWTError(err error) bool {
	for _, target := range []error{
		jwtv5.ErrTokenMalformed,
		jwtv5.ErrTokenSignatureInvalid,
		jwtv5.ErrTokenUnverifiable,
		jwtv5.ErrTokenNotValidYet,
		jwtv5.ErrTokenInvalidClaims,
		jwtv5.ErrSignatureInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// WithMessage devuelve una COPIA con otro mensaje.
func (e *AppError) WithMessage(msg string) *AppError {
	newErr := *e
	newErr.Message = msg
	return &newErr
}

// WithDetail devuelve una COPIA con detalle (validaciones).
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Dependency envuelve la falla de un colaborador (store, cache, mail, media)
// exponiendo su mensaje al cliente.
func Dependency(err error) *AppError {
	return ErrDependencyFailure.WithMessage(err.Error()).WithCause(err)
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// ---------------------------------------------------------------------------------
// 400 Bad Request
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Bad request",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "Request body is not valid JSON",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidRequestShape = &AppError{
		Code:       "INVALID_REQUEST_SHAPE",
		Message:    "Unexpected request body fields",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidActivationCode = &AppError{
		Code:       "INVALID_ACTIVATION_CODE",
		Message:    "Invalid activation code",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidOrExpiredToken = &AppError{
		Code:       "INVALID_OR_EXPIRED_TOKEN",
		Message:    "Invalid or expired activation token",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrRefreshFailed = &AppError{
		Code:       "REFRESH_FAILED",
		Message:    "Couldn't refresh token",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrDependencyFailure = &AppError{
		Code:       "DEPENDENCY_FAILURE",
		Message:    "Upstream dependency failed",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenExpired = &AppError{
		Code:       "INVALID_OR_EXPIRED_TOKEN",
		Message:    "Token is expired, please login again",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenInvalid = &AppError{
		Code:       "INVALID_OR_EXPIRED_TOKEN",
		Message:    "Invalid Token, please login again",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "Request body too large",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// ---------------------------------------------------------------------------------
// 401 / 403
// ---------------------------------------------------------------------------------

var (
	ErrUnauthenticated = &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    "Please login to access this route",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidAccessToken = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Invalid access token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "You are not authorized to access this route",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 404 / 405
// ---------------------------------------------------------------------------------

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "Requested route was not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// ---------------------------------------------------------------------------------
// 409 Conflict
// ---------------------------------------------------------------------------------

var (
	ErrUserAlreadyExists = &AppError{
		Code:       "USER_ALREADY_EXISTS",
		Message:    "User already exists",
		HTTPStatus: http.StatusConflict,
	}

	ErrEmailAlreadyExists = &AppError{
		Code:       "EMAIL_ALREADY_EXISTS",
		Message:    "Email already exists",
		HTTPStatus: http.StatusConflict,
	}
)

// ---------------------------------------------------------------------------------
// 429 / 500
// ---------------------------------------------------------------------------------

var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please try again later",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "Service temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
