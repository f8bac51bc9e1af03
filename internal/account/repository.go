package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/jskalicky/shoply-api/internal/database"
)

// Repository persists accounts in Postgres via Bun.
type Repository struct {
	db *bun.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. The email unique constraint is the source
// of truth for duplicate detection.
func (r *Repository) Create(ctx context.Context, acc *Account) (*Account, error) {
	dbAcc := &database.Account{
		Username:          acc.Username,
		Email:             acc.Email,
		PasswordHash:      acc.PasswordHash,
		Role:              string(acc.Role),
		IsVerified:        acc.IsVerified,
		VerificationToken: acc.VerificationToken,
	}

	_, err := r.db.NewInsert().
		Model(dbAcc).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return mapDBAccount(dbAcc), nil
}

// FindByEmail retrieves an account by its email (exact, case-sensitive).
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return mapDBAccount(dbAcc), nil
}

// FindByID retrieves an account by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return mapDBAccount(dbAcc), nil
}

// Save writes back every mutable field of the account.
func (r *Repository) Save(ctx context.Context, acc *Account) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("username = ?", acc.Username).
		Set("password_hash = ?", acc.PasswordHash).
		Set("role = ?", string(acc.Role)).
		Set("is_verified = ?", acc.IsVerified).
		Set("verification_token = ?", acc.VerificationToken).
		Set("reset_token = ?", acc.ResetToken).
		Set("profile_image = ?", acc.ProfileImage).
		Set("updated_at = NOW()").
		Where("id = ?", acc.ID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Account)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// List returns a page of accounts, optionally filtered by username.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var dbAccounts []database.Account
	q := r.db.NewSelect().
		Model(&dbAccounts).
		Order("created_at ASC").
		Limit(limit).
		Offset((page - 1) * limit)

	if filter.Username != "" {
		q = q.Where("username ILIKE ?", "%"+filter.Username+"%")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*Account, 0, len(dbAccounts))
	for i := range dbAccounts {
		accounts = append(accounts, mapDBAccount(&dbAccounts[i]))
	}

	return accounts, nil
}

// mapDBAccount converts the persistence model to the domain model.
func mapDBAccount(dba *database.Account) *Account {
	return &Account{
		ID:                dba.ID,
		Username:          dba.Username,
		Email:             dba.Email,
		PasswordHash:      dba.PasswordHash,
		Role:              Role(dba.Role),
		IsVerified:        dba.IsVerified,
		VerificationToken: dba.VerificationToken,
		ResetToken:        dba.ResetToken,
		ProfileImage:      dba.ProfileImage,
		CreatedAt:         dba.CreatedAt,
		UpdatedAt:         dba.UpdatedAt,
	}
}
