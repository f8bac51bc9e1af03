package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	accounts map[uuid.UUID]*Account
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[uuid.UUID]*Account)}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	for _, acc := range s.accounts {
		if acc.Email == email {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *acc
	return &copied, nil
}

func (s *memStore) Create(_ context.Context, acc *Account) (*Account, error) {
	for _, existing := range s.accounts {
		if existing.Email == acc.Email {
			return nil, ErrAlreadyExists
		}
	}
	copied := *acc
	copied.ID = uuid.New()
	s.accounts[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (s *memStore) Save(_ context.Context, acc *Account) error {
	if _, ok := s.accounts[acc.ID]; !ok {
		return ErrNotFound
	}
	copied := *acc
	s.accounts[acc.ID] = &copied
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *memStore) List(_ context.Context, _ ListFilter) ([]*Account, error) {
	result := make([]*Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		copied := *acc
		result = append(result, &copied)
	}
	return result, nil
}

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func seed(t *testing.T, store *memStore, email string, role Role) *Account {
	t.Helper()
	acc, err := store.Create(context.Background(), &Account{
		Username:     email,
		Email:        email,
		PasswordHash: "hashed:original",
		Role:         role,
		IsVerified:   true,
	})
	require.NoError(t, err)
	return acc
}

func TestService_Update(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, fakeHash)
	acc := seed(t, store, "alice@example.com", RoleUser)
	ctx := context.Background()

	newName := "alice-renamed"
	updated, err := svc.Update(ctx, acc.ID, UpdateParams{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", updated.Username)
	assert.Equal(t, "hashed:original", updated.PasswordHash)

	newPassword := "newsecret"
	updated, err = svc.Update(ctx, acc.ID, UpdateParams{Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, "hashed:newsecret", updated.PasswordHash)
	assert.Equal(t, "alice-renamed", updated.Username)

	stored, err := store.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:newsecret", stored.PasswordHash)
}

func TestService_Update_UnknownAccount(t *testing.T) {
	svc := NewService(newMemStore(), fakeHash)

	name := "ghost"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateParams{Username: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_Permissions(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes anyone", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, fakeHash)
		admin := seed(t, store, "admin@example.com", RoleAdmin)
		victim := seed(t, store, "victim@example.com", RoleUser)

		require.NoError(t, svc.Delete(ctx, admin.ID, victim.ID))

		_, err := store.FindByID(ctx, victim.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("user deletes self", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, fakeHash)
		user := seed(t, store, "user@example.com", RoleUser)

		assert.NoError(t, svc.Delete(ctx, user.ID, user.ID))
	})

	t.Run("user cannot delete others", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, fakeHash)
		user := seed(t, store, "user@example.com", RoleUser)
		other := seed(t, store, "other@example.com", RoleUser)

		err := svc.Delete(ctx, user.ID, other.ID)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = store.FindByID(ctx, other.ID)
		assert.NoError(t, err)
	})

	t.Run("demoted admin loses delete rights", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, fakeHash)
		admin := seed(t, store, "admin@example.com", RoleAdmin)
		other := seed(t, store, "other@example.com", RoleUser)

		demoted, err := store.FindByID(ctx, admin.ID)
		require.NoError(t, err)
		demoted.Role = RoleUser
		require.NoError(t, store.Save(ctx, demoted))

		err = svc.Delete(ctx, admin.ID, other.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestService_SetProfileImage(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, fakeHash)
	acc := seed(t, store, "alice@example.com", RoleUser)

	updated, err := svc.SetProfileImage(context.Background(), acc.ID, "123-456-avatar.png")
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImage)
	assert.Equal(t, "123-456-avatar.png", *updated.ProfileImage)
}
