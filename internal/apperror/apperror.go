// Package apperror defines the error taxonomy shared by the identity and
// playlist packages and its mapping onto HTTP statuses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a typed operation error with a stable Op + Kind contract.
// Msg is safe to show to clients; Err is the underlying cause and is never
// rendered outside logs.
type Error struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Validation(op, msg string) error {
	return &Error{Op: op, Kind: ErrValidation, Msg: msg}
}

func Unauthorized(op, msg string) error {
	return &Error{Op: op, Kind: ErrUnauthorized, Msg: msg}
}

// InvalidToken is used for every token failure (missing, malformed, bad
// signature, expired) so callers cannot tell them apart.
func InvalidToken(op string, cause error) error {
	return &Error{Op: op, Kind: ErrInvalidToken, Msg: "invalid token", Err: cause}
}

func Forbidden(op, msg string) error {
	return &Error{Op: op, Kind: ErrForbidden, Msg: msg}
}

func NotFound(op, msg string) error {
	return &Error{Op: op, Kind: ErrNotFound, Msg: msg}
}

func Conflict(op, msg string) error {
	return &Error{Op: op, Kind: ErrConflict, Msg: msg}
}

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsInvalidToken(err error) bool { return errors.Is(err, ErrInvalidToken) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }

// StatusCode returns the HTTP status for err. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsUnauthorized(err), IsInvalidToken(err):
		return http.StatusUnauthorized
	case IsForbidden(err):
		return http.StatusForbidden
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for err. Internal errors
// collapse to a generic message.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != nil {
		if ae.Msg != "" {
			return ae.Msg
		}
		return ae.Kind.Error()
	}
	return "internal error"
}
