package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeBookNotFound       ErrorCode = "BOOK_NOT_FOUND"
	ErrCodeReservedRole       ErrorCode = "RESERVED_ROLE"
	ErrCodeProtectedUser      ErrorCode = "PROTECTED_USER"
	ErrCodeBookAlreadyValid   ErrorCode = "BOOK_ALREADY_VALIDATED"
	ErrCodeLoanOutstanding    ErrorCode = "LOAN_OUTSTANDING"
	ErrCodeNoLoanOutstanding  ErrorCode = "NO_LOAN_OUTSTANDING"
	ErrCodeEmptyUpdatePayload ErrorCode = "EMPTY_UPDATE_PAYLOAD"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked       ErrorCode = "TOKEN_REVOKED"
	ErrCodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
)

// FieldViolation is the wire shape of a single failed validation rule:
// the offending property and a map of rule name to human-readable message.
type FieldViolation struct {
	Property string            `json:"property"`
	Infos    map[string]string `json:"infos"`
}

type AppError struct {
	Type       ErrorType        `json:"type"`
	Code       ErrorCode        `json:"code"`
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"errors,omitempty"`
	StatusCode int              `json:"-"`
	Cause      error            `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func NewValidationError(violations []FieldViolation) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "validation failed",
		Violations: violations,
		StatusCode: http.StatusBadRequest,
	}
}

func NewBadRequestError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUserNotFound = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrRoleNotFound = NewNotFoundError("role not found", ErrCodeRoleNotFound)
	ErrBookNotFound = NewNotFoundError("book not found", ErrCodeBookNotFound)

	ErrReservedRole  = NewForbiddenError("this role cannot be deleted", ErrCodeReservedRole)
	ErrProtectedUser = NewForbiddenError("this user cannot be deleted", ErrCodeProtectedUser)

	// validating an already-validated book is reported as not found, the
	// same way a missing book is
	ErrBookAlreadyValidated = NewNotFoundError("book not found", ErrCodeBookAlreadyValid)

	ErrLoanOutstanding   = NewForbiddenError("you already have an outstanding loan", ErrCodeLoanOutstanding)
	ErrNoLoanOutstanding = NewForbiddenError("you have no outstanding loan", ErrCodeNoLoanOutstanding)

	ErrEmptyUpdatePayload = NewBadRequestError("at least one field must be provided", ErrCodeEmptyUpdatePayload)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrTokenRevoked       = NewUnauthorizedError("invalid token", ErrCodeTokenRevoked)
	ErrPermissionDenied   = NewForbiddenError("you do not have the required permissions", ErrCodePermissionDenied)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// ToHTTPResponse returns the status code and JSON body for an error.
// Validation errors surface the full violation list; everything else is a
// plain {message} body so auth failures never leak resource existence.
func (e *AppError) ToHTTPResponse() (int, interface{}) {
	if len(e.Violations) > 0 {
		return e.StatusCode, struct {
			Errors []FieldViolation `json:"errors"`
		}{Errors: e.Violations}
	}
	return e.StatusCode, struct {
		Message string `json:"message"`
	}{Message: e.Message}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       ErrorType        `json:"type"`
		Code       ErrorCode        `json:"code"`
		Message    string           `json:"message"`
		Violations []FieldViolation `json:"errors,omitempty"`
	}{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Violations: e.Violations,
	})
}
