package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jskalicky/shoply-api/internal/account"
)

func seedAccount(t *testing.T, store *fakeStore, role account.Role) *account.Account {
	t.Helper()
	acc, err := store.Create(context.Background(), &account.Account{
		Username:     "test-" + string(role),
		Email:        string(role) + "@example.com",
		PasswordHash: "irrelevant",
		Role:         role,
		IsVerified:   true,
	})
	require.NoError(t, err)
	return acc
}

func newGuard(t *testing.T) (*Middleware, *TokenService, *fakeStore) {
	t.Helper()
	tokens, err := NewTokenService(testKey(7), time.Minute)
	require.NoError(t, err)
	store := newFakeStore()
	return NewMiddleware(tokens, store), tokens, store
}

// okHandler records the claims the guard attached to the context.
func okHandler(got **account.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := account.ClaimsFromContext(r.Context()); ok {
			*got = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_RejectsBadHeaders(t *testing.T) {
	guard, _, _ := newGuard(t)
	handler := guard.RequireAuth(okHandler(new(*account.Claims)))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Token abc"},
		{"missing token", "Bearer "},
		{"too many parts", "Bearer a b"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuth_AttachesClaims(t *testing.T) {
	guard, tokens, store := newGuard(t)
	acc := seedAccount(t, store, account.RoleUser)

	token, err := tokens.IssueToken(acc.ID, acc.Role)
	require.NoError(t, err)

	var got *account.Claims
	handler := guard.RequireAuth(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, acc.ID, got.AccountID)
	assert.Equal(t, account.RoleUser, got.Role)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	guard, _, store := newGuard(t)
	acc := seedAccount(t, store, account.RoleUser)

	expired, err := NewTokenService(testKey(7), -time.Minute)
	require.NoError(t, err)
	token, err := expired.IssueToken(acc.ID, acc.Role)
	require.NoError(t, err)

	handler := guard.RequireAuth(okHandler(new(*account.Claims)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	guard, tokens, store := newGuard(t)
	admin := seedAccount(t, store, account.RoleAdmin)
	user := seedAccount(t, store, account.RoleUser)

	adminToken, err := tokens.IssueToken(admin.ID, admin.Role)
	require.NoError(t, err)
	userToken, err := tokens.IssueToken(user.ID, user.Role)
	require.NoError(t, err)

	tests := []struct {
		name     string
		roles    []account.Role
		token    string
		wantCode int
	}{
		{"admin passes admin gate", []account.Role{account.RoleAdmin}, adminToken, http.StatusOK},
		{"user rejected by admin gate", []account.Role{account.RoleAdmin}, userToken, http.StatusForbidden},
		{"user passes mixed gate", []account.Role{account.RoleAdmin, account.RoleUser}, userToken, http.StatusOK},
		{"empty role set fails closed", nil, adminToken, http.StatusForbidden},
		{"no token", []account.Role{account.RoleAdmin}, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := guard.RequireRoles(tt.roles...)(okHandler(new(*account.Claims)))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

// A demotion takes effect on the next request even while the old token is
// still within its lifetime.
func TestRequireRoles_StoredRoleWins(t *testing.T) {
	guard, tokens, store := newGuard(t)
	acc := seedAccount(t, store, account.RoleAdmin)

	token, err := tokens.IssueToken(acc.ID, account.RoleAdmin)
	require.NoError(t, err)

	demoted := *acc
	demoted.Role = account.RoleUser
	require.NoError(t, store.Save(context.Background(), &demoted))

	var got *account.Claims
	handler := guard.RequireRoles(account.RoleAdmin)(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, got)
}

// brokenStore simulates the database being unreachable.
type brokenStore struct {
	fakeStore
}

func (s *brokenStore) FindByID(context.Context, uuid.UUID) (*account.Account, error) {
	return nil, fmt.Errorf("connection refused")
}

// A store outage is not a permission verdict: the guard must answer 500,
// not 403.
func TestRequireRoles_StoreErrorIsNotForbidden(t *testing.T) {
	tokens, err := NewTokenService(testKey(7), time.Minute)
	require.NoError(t, err)
	guard := NewMiddleware(tokens, &brokenStore{})

	token, err := tokens.IssueToken(uuid.New(), account.RoleAdmin)
	require.NoError(t, err)

	handler := guard.RequireRoles(account.RoleAdmin)(okHandler(new(*account.Claims)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRoles_DeletedAccount(t *testing.T) {
	guard, tokens, store := newGuard(t)
	acc := seedAccount(t, store, account.RoleAdmin)

	token, err := tokens.IssueToken(acc.ID, acc.Role)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), acc.ID))

	handler := guard.RequireRoles(account.RoleAdmin)(okHandler(new(*account.Claims)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
