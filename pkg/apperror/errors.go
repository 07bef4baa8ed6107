// Package apperror carries an HTTP status together with a client-facing message
// so that every failure can be rendered by a single error handler.
package apperror

import (
	"errors"
	"net/http"
)

const (
	MsgInvalidInputs = "Invalid inputs passed, please check your data."
	MsgUnknown       = "An unknown error occurred"
	MsgRouteNotFound = "Could not find this route"
)

// Error is an error with an HTTP status code.
type Error struct {
	Code    int
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches cause to a new Error; cause is logged, never sent to the client.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func Validation(details map[string]string) *Error {
	return &Error{Code: http.StatusUnprocessableEntity, Message: MsgInvalidInputs, Details: details}
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Conflict(message string) *Error {
	return New(http.StatusUnprocessableEntity, message)
}

func Geocode(code int, message string, cause error) *Error {
	return Wrap(code, message, cause)
}

func Store(message string, cause error) *Error {
	return Wrap(http.StatusInternalServerError, message, cause)
}

func RouteNotFound() *Error {
	return New(http.StatusNotFound, MsgRouteNotFound)
}

// StatusOf returns the status and client message for err.
// Errors without a status are reported as 500 with a generic message.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) {
		code, msg := ae.Code, ae.Message
		if code == 0 {
			code = http.StatusInternalServerError
		}
		if msg == "" {
			msg = MsgUnknown
		}
		return code, msg
	}
	return http.StatusInternalServerError, MsgUnknown
}

// DetailsOf returns field-level details when err carries any.
func DetailsOf(err error) map[string]string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}
