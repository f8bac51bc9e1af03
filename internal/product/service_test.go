package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jskalicky/shoply-api/internal/account"
)

type memStore struct {
	products map[uuid.UUID]*Product
}

func newMemStore() *memStore {
	return &memStore{products: make(map[uuid.UUID]*Product)}
}

func (s *memStore) Create(_ context.Context, p *Product) (*Product, error) {
	copied := *p
	copied.ID = uuid.New()
	s.products[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) Save(_ context.Context, p *Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *memStore) List(_ context.Context, _, _ int) ([]*Product, error) {
	result := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		copied := *p
		result = append(result, &copied)
	}
	return result, nil
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMemStore())
	ownerID := uuid.New()

	p, err := svc.Create(context.Background(), ownerID, CreateParams{
		Title:       "Mechanical keyboard",
		Description: "Tactile switches",
		Price:       129.99,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, ownerID, p.AccountID)
	assert.Equal(t, "Mechanical keyboard", p.Title)
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{"missing title", CreateParams{Price: 10}, ErrTitleRequired},
		{"zero price", CreateParams{Title: "Thing", Price: 0}, ErrInvalidPrice},
		{"negative price", CreateParams{Title: "Thing", Price: -5}, ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, uuid.New(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Update_Ownership(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	ownerID := uuid.New()
	p, err := svc.Create(ctx, ownerID, CreateParams{Title: "Lamp", Price: 20})
	require.NoError(t, err)

	update := CreateParams{Title: "Desk lamp", Description: "Warm light", Price: 25}

	t.Run("owner may update", func(t *testing.T) {
		actor := &account.Claims{AccountID: ownerID, Role: account.RoleUser}
		updated, err := svc.Update(ctx, actor, p.ID, update)
		require.NoError(t, err)
		assert.Equal(t, "Desk lamp", updated.Title)
		assert.Equal(t, 25.0, updated.Price)
	})

	t.Run("admin may update", func(t *testing.T) {
		actor := &account.Claims{AccountID: uuid.New(), Role: account.RoleAdmin}
		_, err := svc.Update(ctx, actor, p.ID, update)
		assert.NoError(t, err)
	})

	t.Run("stranger may not update", func(t *testing.T) {
		actor := &account.Claims{AccountID: uuid.New(), Role: account.RoleUser}
		_, err := svc.Update(ctx, actor, p.ID, update)
		assert.ErrorIs(t, err, account.ErrForbidden)
	})
}

func TestService_Update_UnknownProduct(t *testing.T) {
	svc := NewService(newMemStore())
	actor := &account.Claims{AccountID: uuid.New(), Role: account.RoleAdmin}

	_, err := svc.Update(context.Background(), actor, uuid.New(), CreateParams{Title: "X", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	p, err := svc.Create(ctx, uuid.New(), CreateParams{Title: "Chair", Price: 45})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
