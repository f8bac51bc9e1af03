package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/jskalicky/shoply-api/internal/account"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the identity a bearer token carries.
type TokenClaims struct {
	AccountID uuid.UUID    `json:"account_id"`
	Role      account.Role `json:"role"`
	IssuedAt  time.Time    `json:"iat"`
	ExpiresAt time.Time    `json:"exp"`
}

// TokenIssuer mints bearer tokens for an authenticated identity.
type TokenIssuer interface {
	IssueToken(accountID uuid.UUID, role account.Role) (string, error)
}

// TokenValidator checks a bearer token and returns the embedded claims.
type TokenValidator interface {
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// TokenService issues and verifies PASETO v4.local tokens (symmetric
// encryption with XChaCha20-Poly1305). Expiry is the only invalidation
// mechanism; rotating the key invalidates everything at once.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
}

var (
	_ TokenIssuer    = (*TokenService)(nil)
	_ TokenValidator = (*TokenService)(nil)
)

func NewTokenService(symmetricKey []byte, duration time.Duration) (*TokenService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: key,
		duration:     duration,
	}, nil
}

// IssueToken mints a token carrying the account id and role, expiring after
// the configured duration.
func (s *TokenService) IssueToken(accountID uuid.UUID, role account.Role) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(s.duration))
	token.SetString("account_id", accountID.String())
	token.SetString("role", string(role))

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken validates a token and returns its claims. Bad signature,
// malformed payload and expiry all report ErrInvalidToken.
func (s *TokenService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	accountIDStr, err := token.GetString("account_id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role, err := token.GetString("role")
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		AccountID: accountID,
		Role:      account.Role(role),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// generateOpaqueToken creates a cryptographically random single-use token
// for the verification and reset flows (256 bits, base64url).
func generateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
