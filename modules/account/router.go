package account

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/accountkit/handler"
	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/pkg/binder"
	"github.com/dmitrymomot/accountkit/pkg/clientip"
	"github.com/dmitrymomot/accountkit/pkg/httpserver"
	"github.com/dmitrymomot/accountkit/pkg/jwt"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/ratelimiter"
	"github.com/dmitrymomot/accountkit/pkg/requestid"
)

// Config holds HTTP-level settings for the account API.
type Config struct {
	ProductName        string        `env:"PRODUCT_NAME" envDefault:"Accountkit"`
	MaxJSONBodySize    int64         `env:"HTTP_MAX_JSON_BODY" envDefault:"1048576"`
	MaxUploadSize      int64         `env:"HTTP_MAX_UPLOAD_BODY" envDefault:"6291456"`
	RequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	FilesPrefix        string        `env:"FILES_URL_PREFIX" envDefault:"/files/"`

	ClientIP clientip.Config
}

// RouterOptions wires the account API. Accounts and Tokens are required.
type RouterOptions struct {
	Config    Config
	Accounts  Accounts
	Tokens    auth.TokenVerifier
	Providers []Federation
	Logger    *slog.Logger
	// Extractor defaults to jwt.DefaultExtractor.
	Extractor jwt.Extractor
	// HealthChecks run on GET /health/ready.
	HealthChecks []httpserver.HealthCheck
	// Files, when set, is mounted under Config.FilesPrefix.
	Files http.Handler
	// RateLimiter, when set, throttles signup, login and the OAuth
	// handshake per client address.
	RateLimiter ratelimiter.Limiter
}

// Router builds the HTTP handler for the account API.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	extract := opts.Extractor
	if extract == nil {
		extract = jwt.DefaultExtractor()
	}
	cfg := opts.Config
	if cfg.ProductName == "" {
		cfg.ProductName = "Accountkit"
	}

	errorHandler := handler.NewErrorHandler(log, MapError)
	a := &api{accounts: opts.Accounts, extract: extract}
	o := newOAuthAPI(opts.Providers)
	jsonBody := binder.JSON(cfg.MaxJSONBodySize)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(cfg.ClientIP.TrustProxyHeaders))
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", jwt.AccessTokenHeader, requestid.Header},
			ExposedHeaders: []string{requestid.Header},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler(handler.NewContext(w, r), handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler(handler.NewContext(w, r), handler.ErrMethodNotAllowed)
	})

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, 5*time.Second, opts.HealthChecks...))

	if opts.Files != nil {
		prefix := "/" + strings.Trim(cfg.FilesPrefix, "/")
		if prefix == "/" {
			prefix = "/files"
		}
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", opts.Files))
	}

	throttle := func(scope string) func(http.Handler) http.Handler {
		if opts.RateLimiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return ratelimiter.Middleware(opts.RateLimiter,
			ratelimiter.WithScope(scope),
			ratelimiter.WithExceededHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
				errorHandler(handler.NewContext(w, r), handler.ErrTooManyRequests)
			}),
			ratelimiter.WithStoreErrorHandler(func(r *http.Request, err error) {
				log.WarnContext(r.Context(), "rate limiter unavailable", logger.Error(err))
			}),
		)
	}

	r.Route("/auth/{provider}", func(r chi.Router) {
		r.Use(throttle("oauth:"))
		r.Get("/", wrap(o.redirect, errorHandler))
		r.Get("/callback", wrap(o.callback, errorHandler))
	})

	r.Route("/v1", func(r chi.Router) {
		welcome := messageResponse{Message: "Welcome to " + cfg.ProductName + " API"}
		r.Get("/", wrap(func(handler.Context, struct{}) handler.Response { return handler.JSON(welcome) }, errorHandler))

		r.Route("/auth", func(r chi.Router) {
			r.With(throttle("signup:")).Post("/signup", wrap(a.signup, errorHandler, jsonBody))
			r.With(throttle("login:")).Post("/login", wrap(a.login, errorHandler, jsonBody))
			r.Get("/logout", wrap(a.logout, errorHandler))
			r.Post("/logout", wrap(a.logout, errorHandler))
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(opts.Tokens, extract, errorHandler))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", wrap(a.getProfile, errorHandler))
				r.Put("/", wrap(a.updateProfile, errorHandler, jsonBody))
				r.Put("/photo", wrap(a.updatePhoto, errorHandler, photoBinder(cfg.MaxUploadSize)))
				r.Put("/privacy", wrap(a.updatePrivacy, errorHandler, jsonBody))
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/", wrap(a.listAll, errorHandler))
				r.Get("/public", wrap(a.listPublic, errorHandler))
				r.Put("/{id}/role", wrap(a.setRole, errorHandler, jsonBody))
			})
		})
	})

	return r
}

func wrap[R any](h handler.HandlerFunc[R], onError handler.ErrorHandler, binders ...binder.Func) http.HandlerFunc {
	return handler.Wrap(h, handler.WithBinders(binders...), handler.WithErrorHandler(onError))
}
