package auth

import "errors"

// Account errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongProvider      = errors.New("account uses a different sign-in provider")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidVisibility  = errors.New("invalid visibility")
	ErrInvalidRole        = errors.New("invalid role")
)

// Token errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidConfig = errors.New("invalid auth configuration")
)

// Federation errors
var (
	ErrInvalidState       = errors.New("invalid or expired oauth state")
	ErrStateNotFound      = errors.New("oauth state not found")
	ErrUpstreamFailure    = errors.New("identity provider request failed")
	ErrNoProviderEmail    = errors.New("identity provider returned no email")
	ErrUnverifiedEmail    = errors.New("email not verified by provider")
	ErrProviderEmailInUse = errors.New("email from provider already registered")
	ErrUnknownProvider    = errors.New("unknown identity provider")
)
