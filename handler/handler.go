package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/accountkit/pkg/binder"
)

// HandlerFunc handles a request whose body or query was decoded into R.
type HandlerFunc[R any] func(ctx Context, req R) Response

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(ctx Context, err error)

// WrapOption configures Wrap.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	binders      []binder.Func
	errorHandler ErrorHandler
}

// WithBinders sets the binders run, in order, before the handler.
// Binders returning binder.ErrNotApplicable are skipped.
func WithBinders(binders ...binder.Func) WrapOption {
	return func(c *wrapConfig) {
		c.binders = append(c.binders, binders...)
	}
}

// WithErrorHandler replaces the default error handler, which writes the
// JSON error body without logging.
func WithErrorHandler(h ErrorHandler) WrapOption {
	return func(c *wrapConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func defaultErrorHandler(ctx Context, err error) {
	status, detail := Classify(err)
	_ = writeError(ctx.ResponseWriter(), status, detail)
}

// Wrap converts a typed HandlerFunc to http.HandlerFunc.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption) http.HandlerFunc {
	cfg := &wrapConfig{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, err)
				return
			}
		}

		res := h(ctx, req)
		if res == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := res.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
