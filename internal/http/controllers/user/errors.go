package user

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/userhub/internal/http/errors"
	svc "github.com/dropDatabas3/userhub/internal/http/services/user"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"go.uber.org/zap"
)

// writeUserError traduce errores del service a AppError y escribe la respuesta.
func writeUserError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		appErr *httperrors.AppError
		valErr *svc.ValidationError
		weak   *svc.WeakPasswordError
		depErr *svc.DependencyError
	)

	switch {
	case errors.As(err, &appErr):
		httperrors.WriteError(w, appErr)
	case errors.As(err, &valErr):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage(valErr.Error()))
	case errors.As(err, &weak):
		httperrors.WriteError(w, httperrors.ErrBadRequest.
			WithMessage("Password does not meet the security policy").
			WithDetail(strings.Join(weak.Reasons, ",")))
	case errors.As(err, &depErr):
		log.Error("dependency failure", zap.String("dep", depErr.Dep), zap.Error(depErr.Err))
		httperrors.WriteError(w, httperrors.Dependency(depErr.Err))

	case errors.Is(err, svc.ErrMissingCredentials):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("Please enter email and password"))
	case errors.Is(err, svc.ErrUserAlreadyExists):
		httperrors.WriteError(w, httperrors.ErrUserAlreadyExists)
	case errors.Is(err, svc.ErrEmailAlreadyExists):
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyExists)
	case errors.Is(err, svc.ErrUserNotFound):
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrSocialAccount):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials.
			WithMessage("This account signs in with a social provider and has no password"))
	case errors.Is(err, svc.ErrMissingCurrentPassword):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("Please enter current password"))
	case errors.Is(err, svc.ErrMissingNewPassword):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("Please enter new password"))
	case errors.Is(err, svc.ErrInvalidCurrentPassword):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials.WithMessage("Invalid current password"))
	case errors.Is(err, svc.ErrMissingAvatar):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("Please upload an avatar"))
	case errors.Is(err, svc.ErrRefreshFailed):
		log.Debug("refresh rejected", zap.Error(err))
		httperrors.WriteError(w, httperrors.ErrRefreshFailed)
	case errors.Is(err, svc.ErrInvalidRole):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithMessage("Invalid role"))

	case errors.Is(err, jwtx.ErrInvalidActivationCode):
		httperrors.WriteError(w, httperrors.ErrInvalidActivationCode)
	case errors.Is(err, jwtx.ErrInvalidOrExpiredToken):
		httperrors.WriteError(w, httperrors.ErrInvalidOrExpiredToken)

	default:
		log.Error("unexpected error", zap.Error(err))
		httperrors.WriteError(w, err)
	}
}
