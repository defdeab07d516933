package handler

import (
	"errors"
	"net/http"
)

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response
	ErrNilResponse = errors.New("handler returned nil response")
)

// HTTPError is an error with an HTTP status and a stable machine-readable
// code. Message is sent to the client; when empty the status text is used.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// ClientMessage returns the text safe to show to the caller.
func (e HTTPError) ClientMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, code, message string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: message}
}

var (
	ErrBadRequest           = HTTPError{Status: http.StatusBadRequest, Code: "bad_request"}
	ErrUnauthorized         = HTTPError{Status: http.StatusUnauthorized, Code: "unauthorized"}
	ErrForbidden            = HTTPError{Status: http.StatusForbidden, Code: "forbidden"}
	ErrNotFound             = HTTPError{Status: http.StatusNotFound, Code: "not_found"}
	ErrMethodNotAllowed     = HTTPError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed"}
	ErrRequestTooLarge      = HTTPError{Status: http.StatusRequestEntityTooLarge, Code: "request_too_large"}
	ErrUnsupportedMediaType = HTTPError{Status: http.StatusUnsupportedMediaType, Code: "unsupported_media_type"}
	ErrTooManyRequests      = HTTPError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: "too many requests, try again later"}
	ErrBadGateway           = HTTPError{Status: http.StatusBadGateway, Code: "upstream_failure"}
	ErrInternal             = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
)
