package product

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jskalicky/shoply-api/internal/account"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidPrice  = errors.New("price must be greater than zero")
)

// Service implements product management. Writes are restricted to the
// owning account, except for admins.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateParams carries the fields of a new product.
type CreateParams struct {
	Title       string
	Description string
	Price       float64
}

func (p CreateParams) validate() error {
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Create stores a new product owned by the calling account.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, &Product{
		Title:       params.Title,
		Description: params.Description,
		Price:       params.Price,
		AccountID:   ownerID,
	})
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.store.FindByID(ctx, id)
}

// List returns a page of products.
func (s *Service) List(ctx context.Context, page, limit int) ([]*Product, error) {
	return s.store.List(ctx, page, limit)
}

// Update modifies a product. Only the owner or an admin may update it.
func (s *Service) Update(ctx context.Context, actor *account.Claims, id uuid.UUID, params CreateParams) (*Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != account.RoleAdmin && p.AccountID != actor.AccountID {
		return nil, account.ErrForbidden
	}

	p.Title = params.Title
	p.Description = params.Description
	p.Price = params.Price

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
