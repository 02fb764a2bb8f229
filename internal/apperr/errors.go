// Package apperr defines the error taxonomy shared by services and handlers.
// Services return *Error values (or wrap them); only the HTTP layer turns a
// Code into a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeDuplicateEmail      Code = "DUPLICATE_EMAIL"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeAccountLocked       Code = "ACCOUNT_LOCKED"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeInvalidToken        Code = "INVALID_TOKEN"
	CodeTokenExpired        Code = "TOKEN_EXPIRED"
	CodeInvalidRefreshToken Code = "INVALID_REFRESH_TOKEN"
	CodeAccountDeactivated  Code = "ACCOUNT_DEACTIVATED"
	CodeIncorrectPassword   Code = "INCORRECT_PASSWORD"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnsupportedIndustry Code = "UNSUPPORTED_INDUSTRY"
	CodeInvalidIndustryType Code = "INVALID_INDUSTRY_TYPE"
	CodeServiceUnavailable  Code = "SERVICE_UNAVAILABLE"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error with a client-safe message.  Cause is kept for
// logging and is never rendered to clients.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Code so that errors.Is(err, apperr.ErrAccountLocked) holds for
// any locked-account error regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMessage returns a copy of e carrying a different message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Validation builds a 400 error listing the offending fields.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Sentinels used across the service layer.  Compare with errors.Is.
var (
	ErrValidation          = New(CodeValidation, "Validation failed")
	ErrDuplicateEmail      = New(CodeDuplicateEmail, "User already exists with this email")
	ErrInvalidCredentials  = New(CodeInvalidCredentials, "Invalid credentials")
	ErrAccountLocked       = New(CodeAccountLocked, "Account is temporarily locked due to too many failed login attempts")
	ErrUnauthenticated     = New(CodeUnauthenticated, "Access denied. No token provided.")
	ErrInvalidToken        = New(CodeInvalidToken, "Invalid token.")
	ErrTokenExpired        = New(CodeTokenExpired, "Token expired.")
	ErrInvalidRefreshToken = New(CodeInvalidRefreshToken, "Invalid refresh token")
	ErrAccountDeactivated  = New(CodeAccountDeactivated, "Account is deactivated.")
	ErrIncorrectPassword   = New(CodeIncorrectPassword, "Current password is incorrect")
	ErrForbidden           = New(CodeForbidden, "Access denied.")
	ErrNotFound            = New(CodeNotFound, "Resource not found")
	ErrUnsupportedIndustry = New(CodeUnsupportedIndustry, "Industry type has no profile")
	ErrInvalidIndustryType = New(CodeInvalidIndustryType, "Invalid industry type")
	ErrServiceUnavailable  = New(CodeServiceUnavailable, "Database service unavailable. Please try again later.")
	ErrInternal            = New(CodeInternal, "Internal server error")
)

// HTTPStatus maps a code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeDuplicateEmail, CodeIncorrectPassword,
		CodeUnsupportedIndustry, CodeInvalidIndustryType:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeAccountLocked, CodeUnauthenticated, CodeInvalidToken,
		CodeTokenExpired, CodeInvalidRefreshToken, CodeAccountDeactivated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// From extracts the *Error in err's chain, or wraps err as an internal error.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal.WithCause(err)
}
