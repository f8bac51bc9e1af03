package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the persistence model for user accounts.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Username          string    `bun:"username"`
	Email             string    `bun:"email,unique,notnull"`
	PasswordHash      string    `bun:"password_hash,notnull"`
	Role              string    `bun:"role,notnull,default:'user'"`
	IsVerified        bool      `bun:"is_verified,notnull,default:false"`
	VerificationToken *string   `bun:"verification_token"`
	ResetToken        *string   `bun:"reset_token"`
	ProfileImage      *string   `bun:"profile_image"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Product is the persistence model for products.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	Price       float64   `bun:"price,notnull"`
	AccountID   uuid.UUID `bun:"account_id,type:uuid,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
