package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/accountkit/handler"
	"github.com/dmitrymomot/accountkit/pkg/auth"
)

var errorTable = []struct {
	err  error
	resp handler.HTTPError
}{
	{auth.ErrEmailAlreadyExists, handler.NewHTTPError(http.StatusBadRequest, "email_already_exists", "an account with this email already exists")},
	{auth.ErrAccountNotFound, handler.NewHTTPError(http.StatusNotFound, "account_not_found", "account not found")},
	{auth.ErrWrongProvider, handler.NewHTTPError(http.StatusBadRequest, "wrong_provider", "this account signs in through an identity provider")},
	{auth.ErrInvalidCredentials, handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")},
	{auth.ErrMissingToken, handler.NewHTTPError(http.StatusBadRequest, "missing_token", "access token is required")},
	{auth.ErrUnauthorized, handler.NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid or expired access token")},
	{auth.ErrForbidden, handler.NewHTTPError(http.StatusForbidden, "forbidden", "insufficient privileges")},
	{auth.ErrProviderEmailInUse, handler.NewHTTPError(http.StatusForbidden, "provider_email_in_use", "this email is already registered with a different sign-in method")},
	{auth.ErrInvalidVisibility, handler.NewHTTPError(http.StatusBadRequest, "invalid_visibility", "visibility must be public or private")},
	{auth.ErrInvalidRole, handler.NewHTTPError(http.StatusBadRequest, "invalid_role", "role must be user or admin")},
	{auth.ErrInvalidState, handler.NewHTTPError(http.StatusBadRequest, "invalid_state", "sign-in session expired, please try again")},
	{auth.ErrStateNotFound, handler.NewHTTPError(http.StatusBadRequest, "invalid_state", "sign-in session expired, please try again")},
	{auth.ErrNoProviderEmail, handler.NewHTTPError(http.StatusBadRequest, "no_provider_email", "the identity provider did not share an email address")},
	{auth.ErrUnverifiedEmail, handler.NewHTTPError(http.StatusBadRequest, "unverified_email", "the identity provider reports the email as unverified")},
	{auth.ErrUnknownProvider, handler.NewHTTPError(http.StatusNotFound, "unknown_provider", "unknown identity provider")},
	{auth.ErrUpstreamFailure, handler.NewHTTPError(http.StatusBadGateway, "upstream_failure", "identity provider request failed")},
}

// MapError translates account and auth errors into HTTP errors.
func MapError(err error) (handler.HTTPError, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.resp, true
		}
	}
	return handler.HTTPError{}, false
}
