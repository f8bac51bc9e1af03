package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/jskalicky/shoply-api/internal/database"
)

// Repository persists products in Postgres via Bun.
type Repository struct {
	db *bun.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, p *Product) (*Product, error) {
	dbProduct := &database.Product{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		AccountID:   p.AccountID,
	}

	_, err := r.db.NewInsert().
		Model(dbProduct).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return mapDBProduct(dbProduct), nil
}

// FindByID retrieves a product by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	dbProduct := new(database.Product)
	err := r.db.NewSelect().
		Model(dbProduct).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return mapDBProduct(dbProduct), nil
}

// Save updates the mutable fields of a product.
func (r *Repository) Save(ctx context.Context, p *Product) error {
	result, err := r.db.NewUpdate().
		Model((*database.Product)(nil)).
		Set("title = ?", p.Title).
		Set("description = ?", p.Description).
		Set("price = ?", p.Price).
		Set("updated_at = NOW()").
		Where("id = ?", p.ID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
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

// Delete removes a product.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
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

// List returns a page of products, newest first.
func (r *Repository) List(ctx context.Context, page, limit int) ([]*Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var dbProducts []database.Product
	err := r.db.NewSelect().
		Model(&dbProducts).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*Product, 0, len(dbProducts))
	for i := range dbProducts {
		products = append(products, mapDBProduct(&dbProducts[i]))
	}

	return products, nil
}

// mapDBProduct converts the persistence model to the domain model.
func mapDBProduct(dbp *database.Product) *Product {
	return &Product{
		ID:          dbp.ID,
		Title:       dbp.Title,
		Description: dbp.Description,
		Price:       dbp.Price,
		AccountID:   dbp.AccountID,
		CreatedAt:   dbp.CreatedAt,
		UpdatedAt:   dbp.UpdatedAt,
	}
}
