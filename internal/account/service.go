package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PasswordHasher turns a plaintext password into a stored hash. Injected so
// this package stays free of the credential hasher's dependencies.
type PasswordHasher func(password string) (string, error)

// Service implements account management: lookups, listing, self-service
// updates and deletion.
type Service struct {
	store Store
	hash  PasswordHasher
}

func NewService(store Store, hash PasswordHasher) *Service {
	return &Service{store: store, hash: hash}
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.store.FindByID(ctx, id)
}

// List returns a page of accounts.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	return s.store.List(ctx, filter)
}

// UpdateParams carries the self-service mutable fields. Nil means "leave
// unchanged".
type UpdateParams struct {
	Username *string
	Password *string
}

// Update applies a self-service update to the caller's own account. A new
// password is re-hashed before it is stored.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Account, error) {
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		acc.Username = *params.Username
	}
	if params.Password != nil {
		passwordHash, err := s.hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		acc.PasswordHash = passwordHash
	}

	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// Delete removes an account. Admins may delete anyone; everyone else only
// themselves. The actor's role is re-read from the store so a demotion
// takes effect immediately.
func (s *Service) Delete(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.store.FindByID(ctx, actorID)
	if err != nil {
		return err
	}

	if actor.Role != RoleAdmin && actorID != targetID {
		return ErrForbidden
	}

	return s.store.Delete(ctx, targetID)
}

// SetProfileImage records the stored filename of the account's profile image.
func (s *Service) SetProfileImage(ctx context.Context, id uuid.UUID, filename string) (*Account, error) {
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	acc.ProfileImage = &filename

	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}
