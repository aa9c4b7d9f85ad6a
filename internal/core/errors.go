// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "VALIDATION_ERROR")
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict, "CONFLICT")
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid token",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
	)
}

// FromError maps a wrapped sentinel to the AppError the API reports for it.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrNotFound):
		return NotFoundError("resource")
	case errors.Is(err, ErrInvalidInput):
		return ValidationError(err.Error())
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateKey):
		return ConflictError("resource already exists")
	default:
		return InternalError(err)
	}
}
