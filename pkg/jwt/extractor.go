package jwt

import (
	"net/http"
	"strings"
)

// AccessTokenHeader is the header clients use to present tokens.
const AccessTokenHeader = "x-access-token"

// Extractor pulls a raw token from a request. It returns ErrMissingToken
// when the request carries none.
type Extractor func(r *http.Request) (string, error)

// HeaderExtractor reads the token verbatim from the named header.
func HeaderExtractor(name string) Extractor {
	return func(r *http.Request) (string, error) {
		if tok := strings.TrimSpace(r.Header.Get(name)); tok != "" {
			return tok, nil
		}
		return "", ErrMissingToken
	}
}

// BearerExtractor reads "Authorization: Bearer <token>".
func BearerExtractor(r *http.Request) (string, error) {
	scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(tok), nil
}

// Chain returns the first token found by extractors.
func Chain(extractors ...Extractor) Extractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			if tok, err := ex(r); err == nil {
				return tok, nil
			}
		}
		return "", ErrMissingToken
	}
}

// DefaultExtractor accepts the x-access-token header first, then a bearer
// Authorization header.
func DefaultExtractor() Extractor {
	return Chain(HeaderExtractor(AccessTokenHeader), BearerExtractor)
}
