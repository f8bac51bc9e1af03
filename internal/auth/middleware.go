package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jskalicky/shoply-api/internal/account"
	"github.com/jskalicky/shoply-api/internal/httputil"
	"github.com/jskalicky/shoply-api/internal/logging"
)

// Middleware guards protected routes. RequireAuth only checks the bearer
// token; RequireRoles additionally re-fetches the account so that role
// changes take effect immediately rather than at token expiry.
type Middleware struct {
	validator TokenValidator
	store     account.Store
}

func NewMiddleware(validator TokenValidator, store account.Store) *Middleware {
	return &Middleware{validator: validator, store: store}
}

// RequireAuth validates the Authorization header and attaches the resolved
// identity to the request context. Any failure is a 401; the request is
// never partially authenticated.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(w, r)
		if !ok {
			return
		}

		ctx := account.WithClaims(r.Context(), &account.Claims{
			AccountID: claims.AccountID,
			Role:      claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows the request iff the account behind the token still
// exists and its current role is in the given set. An empty set fails
// closed: the route is unreachable through this guard.
func (m *Middleware) RequireRoles(roles ...account.Role) func(next http.Handler) http.Handler {
	allowed := make(map[account.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				httputil.RespondErrorWithCode(w, "forbidden", httputil.CodeForbidden, http.StatusForbidden)
				return
			}

			claims, ok := m.authenticate(w, r)
			if !ok {
				return
			}

			// The token's embedded role may be stale; the stored role decides.
			acc, err := m.store.FindByID(r.Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, account.ErrNotFound) {
					httputil.RespondErrorWithCode(w, "forbidden", httputil.CodeForbidden, http.StatusForbidden)
					return
				}
				logging.GetLoggerFromContext(r.Context()).Error("role check failed: account lookup", "error", err.Error())
				httputil.RespondErrorWithCode(w, "failed to check permissions", httputil.CodeInternalError, http.StatusInternalServerError)
				return
			}

			if !allowed[acc.Role] {
				httputil.RespondErrorWithCode(w, "insufficient role", httputil.CodeForbidden, http.StatusForbidden)
				return
			}

			ctx := account.WithClaims(r.Context(), &account.Claims{
				AccountID: acc.ID,
				Role:      acc.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate extracts and verifies the bearer token, writing the 401
// itself when anything is off.
func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) (*TokenClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
		return nil, false
	}

	claims, err := m.validator.VerifyToken(parts[1])
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return nil, false
	}

	return claims, true
}
