// Package common defines shared constants, sentinel errors and the structured
// error value returned by every backend strategy. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorUnknownTable  = errors.New("unknown table")
	ErrorUnknownColumn = errors.New("unknown column")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrorUserExists         = errors.New("user already exists")

	// Service-level errors.
	ErrorInternal    = errors.New("internal error")
	ErrorUnavailable = errors.New("backend unavailable")

	// Validation errors.
	ErrorIncorrectStatus = errors.New("incorrect rumor status")
	ErrorIncorrectTheme  = errors.New("incorrect theme")
)

// Messages carried by APIError for the expected domain failures.
const (
	MessageInvalidCredentials = "Invalid credentials"
	MessageNotFound           = "Not found"
	MessageUserExists         = "User already registered"
)

// APIError is an expected domain failure reported as part of a response
// value instead of the Go error return. It serializes as {"message": "..."}.
type APIError struct {
	Message string `json:"message"`
	cause   error
}

// NewAPIError returns an APIError with the given message that unwraps to cause.
func NewAPIError(message string, cause error) *APIError {
	return &APIError{Message: message, cause: cause}
}

// NotFound is the structured "Not found" result.
func NotFound() *APIError {
	return NewAPIError(MessageNotFound, ErrorNotFound)
}

// InvalidCredentials is the structured "Invalid credentials" result.
func InvalidCredentials() *APIError {
	return NewAPIError(MessageInvalidCredentials, ErrorInvalidCredentials)
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}
