package catalog

import (
	"context"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*Product, error)
	// FindAll returns every product ordered by ID
	FindAll(ctx context.Context) ([]*Product, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
}
