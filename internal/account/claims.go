package account

import (
	"context"

	"github.com/google/uuid"
)

// Claims is the identity the authentication guard resolved for a request.
type Claims struct {
	AccountID uuid.UUID
	Role      Role
}

type contextKey string

const claimsContextKey contextKey = "account_claims"

// WithClaims attaches the authenticated identity to the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the identity the guard attached, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
