package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorForbidden       ErrorCode = "forbidden"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorConflict        ErrorCode = "conflict"
	ErrorUnauthorized    ErrorCode = "unauthorized"
	ErrorBadGateway      ErrorCode = "bad_gateway"
	ErrorTooManyRequests ErrorCode = "too_many_requests"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewBadGatewayError(msg string) error { return &ServiceError{Code: ErrorBadGateway, Message: msg} }

func NewTooManyRequestsError(msg string) error {
	return &ServiceError{Code: ErrorTooManyRequests, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Sentinels for conditions callers branch on with errors.Is.
var (
	ErrTrackNotFound      = &ServiceError{Code: ErrorNotFound, Message: "track not found"}
	ErrUserNotFound       = &ServiceError{Code: ErrorNotFound, Message: "user not found"}
	ErrInvalidCredentials = &ServiceError{Code: ErrorUnauthorized, Message: "invalid credentials"}
	ErrResetCodeInvalid   = &ServiceError{Code: ErrorInvalid, Message: "reset code is invalid or expired"}
	ErrResetCodeExhausted = &ServiceError{Code: ErrorTooManyRequests, Message: "too many reset attempts"}
	ErrLoginRequired      = &ServiceError{Code: ErrorUnauthorized, Message: "authentication required"}
)

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
