package auth

import (
	"context"

	"github.com/google/uuid"
)

type accountIDContextKey struct{}
type tokenContextKey struct{}

// WithAccountID stores the authenticated account id in ctx.
func WithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDContextKey{}, id)
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDContextKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithToken stores the raw access token that authenticated the request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the raw access token, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
