package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrAlreadyExists = errors.New("email already exists")
	ErrForbidden     = errors.New("operation not allowed for this account")
)

// Role is a coarse permission tier controlling access to gated operations.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account is the domain model for a user account. The password hash and the
// single-use tokens never leave the system boundary.
type Account struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              Role      `json:"role"`
	IsVerified        bool      `json:"is_verified"`
	VerificationToken *string   `json:"-"`
	ResetToken        *string   `json:"-"`
	ProfileImage      *string   `json:"profile_image,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ListFilter narrows and pages List results.
type ListFilter struct {
	Username string
	Page     int
	Limit    int
}

// Store is the only gateway allowed to read or write account records.
// All operations are strongly consistent (read-after-write).
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, acc *Account) (*Account, error)
	Save(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Account, error)
}
