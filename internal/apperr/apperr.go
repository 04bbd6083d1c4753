package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the service and repository layers. Handlers map
// them onto the response envelope through FromError.
var (
	ErrUserNotFound       = New(http.StatusNotFound, "user not found")
	ErrEmailExists        = New(http.StatusConflict, "user with this email already exists")
	ErrPhoneExists        = New(http.StatusConflict, "user with this phone number already exists")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid email or password")
	ErrInvalidToken       = New(http.StatusUnauthorized, "invalid or expired token")
	ErrMissingClientID    = New(http.StatusUnauthorized, "missing or invalid client id")
	ErrForbidden          = New(http.StatusForbidden, "you do not have permission to access this resource")
)

// Error is a typed application error carrying the HTTP status it should be
// reported with and, for validation failures, one message per failed field.
type Error struct {
	Status  int
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with a status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Validation builds a 400 error collecting every field message.
func Validation(fields []string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

// FromError extracts the typed error, or wraps anything else as a 500.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Status: http.StatusInternalServerError, Message: err.Error()}
}
