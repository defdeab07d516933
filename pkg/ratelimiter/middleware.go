package ratelimiter

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/accountkit/pkg/clientip"
)

// KeyFunc derives the bucket key for a request.
type KeyFunc func(r *http.Request) string

type middlewareConfig struct {
	key        KeyFunc
	onExceeded func(w http.ResponseWriter, r *http.Request, res *Result)
	onError    func(r *http.Request, err error)
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithKeyFunc overrides the default client address key.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) { c.key = fn }
}

// WithScope prefixes the client address key so separate route groups keep
// separate buckets in one store.
func WithScope(prefix string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.key = func(r *http.Request) string { return prefix + ClientIPKey(r) }
	}
}

// WithExceededHandler writes the response for rejected requests.
func WithExceededHandler(fn func(w http.ResponseWriter, r *http.Request, res *Result)) MiddlewareOption {
	return func(c *middlewareConfig) { c.onExceeded = fn }
}

// WithStoreErrorHandler is called when the limiter fails. The request is
// let through afterwards.
func WithStoreErrorHandler(fn func(r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) { c.onError = fn }
}

// ClientIPKey keys buckets by the address resolved by clientip.Middleware,
// falling back to the peer address.
func ClientIPKey(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.RemoteIP(r)
}

// Middleware rejects requests once the caller's bucket is empty. It sets
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset on every
// response and Retry-After on rejections.
func Middleware(limiter Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		key: ClientIPKey,
		onExceeded: func(w http.ResponseWriter, _ *http.Request, _ *Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		},
		onError: func(*http.Request, error) {},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), cfg.key(r))
			if err != nil {
				cfg.onError(r, err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				secs := int(math.Ceil(res.RetryAfter().Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				cfg.onExceeded(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
