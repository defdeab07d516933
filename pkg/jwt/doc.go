// Package jwt signs and verifies HS256 JSON Web Tokens on top of
// github.com/golang-jwt/jwt/v5, and extracts raw tokens from HTTP requests.
//
// A Service holds the signing key, issuer and token lifetime. Generate
// produces a compact token whose subject is the caller supplied id together
// with iat, exp and a random jti. Parse accepts only HS256 and reports
// failures through the sentinel errors in this package so callers never
// depend on the underlying library.
//
//	svc, err := jwt.New([]byte(secret), jwt.WithIssuer("accountd"), jwt.WithTTL(24*time.Hour))
//	tok, claims, err := svc.Generate(accountID.String())
//	claims, err = svc.Parse(tok)
//
// Extractors read the token from the x-access-token header, an
// Authorization bearer header or a cookie; Chain tries several in order.
package jwt
