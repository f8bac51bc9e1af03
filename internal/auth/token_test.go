package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jskalicky/shoply-api/internal/account"
)

func testKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestNewTokenService_KeySize(t *testing.T) {
	_, err := NewTokenService([]byte("too short"), time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService(testKey(1), time.Minute)
	assert.NoError(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKey(1), 15*time.Minute)
	require.NoError(t, err)

	accountID := uuid.New()
	token, err := svc.IssueToken(accountID, account.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, account.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService(testKey(1), -time.Minute)
	require.NoError(t, err)

	token, err := svc.IssueToken(uuid.New(), account.RoleUser)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer, err := NewTokenService(testKey(1), time.Minute)
	require.NoError(t, err)
	verifier, err := NewTokenService(testKey(2), time.Minute)
	require.NoError(t, err)

	token, err := issuer.IssueToken(uuid.New(), account.RoleUser)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Garbage(t *testing.T) {
	svc, err := NewTokenService(testKey(1), time.Minute)
	require.NoError(t, err)

	for _, tokenStr := range []string{"", "garbage", "v4.local.not-a-real-token"} {
		_, err := svc.VerifyToken(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	first, err := generateOpaqueToken()
	require.NoError(t, err)
	second, err := generateOpaqueToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
