package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/accountkit/pkg/binder"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/requestid"
	"github.com/dmitrymomot/accountkit/pkg/validator"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type errorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorMapper translates a domain error into an HTTPError. It returns false
// for errors it does not recognize.
type ErrorMapper func(err error) (HTTPError, bool)

// Classify resolves err to a status code and client-facing detail.
// Validation errors win, then explicit HTTPErrors, then mappers in order,
// then binder failures. Anything else is a 500 with a generic message.
func Classify(err error, mappers ...ErrorMapper) (int, ErrorDetail) {
	if verrs := validator.ExtractValidationErrors(err); len(verrs) > 0 {
		return http.StatusBadRequest, ErrorDetail{
			Code:    "validation_error",
			Message: "request validation failed",
			Details: verrs.Fields(),
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, ErrorDetail{Code: httpErr.Code, Message: httpErr.ClientMessage()}
	}

	for _, m := range mappers {
		if httpErr, ok := m(err); ok {
			return httpErr.Status, ErrorDetail{Code: httpErr.Code, Message: httpErr.ClientMessage()}
		}
	}

	switch {
	case errors.Is(err, binder.ErrBodyTooLarge):
		return ErrRequestTooLarge.Status, ErrorDetail{Code: ErrRequestTooLarge.Code, Message: "request body too large"}
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrUnsupportedMediaType.Status, ErrorDetail{Code: ErrUnsupportedMediaType.Code, Message: "unsupported media type"}
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParseForm):
		return http.StatusBadRequest, ErrorDetail{Code: "validation_error", Message: "malformed request body"}
	}

	return ErrInternal.Status, ErrorDetail{Code: ErrInternal.Code, Message: ErrInternal.Message}
}

// WriteError writes the JSON error body with status.
func WriteError(w http.ResponseWriter, status int, detail ErrorDetail) error {
	return writeError(w, status, detail)
}

func writeError(w http.ResponseWriter, status int, detail ErrorDetail) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(errorBody{Error: detail})
}

// NewErrorHandler returns an ErrorHandler that classifies errors with
// mappers, logs them and writes the JSON error body. Server errors are logged
// at error level with the underlying cause; client errors at debug.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		status, detail := Classify(err, mappers...)
		r := ctx.Request()

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("code", detail.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if werr := writeError(ctx.ResponseWriter(), status, detail); werr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to write error response",
				logger.Error(werr),
				logger.Component("error_handler"),
			)
		}
	}
}
