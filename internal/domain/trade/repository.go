package trade

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts a new order and assigns its ID
	Create(ctx context.Context, order *Order) error

	// Update updates an existing order
	Update(ctx context.Context, order *Order) error

	// Delete deletes an order together with its product associations
	Delete(ctx context.Context, id uint64) error

	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uint64) (*Order, error)

	// FindByIDForUpdate finds an order and locks it for the rest of the
	// current transaction where the store supports row locks
	FindByIDForUpdate(ctx context.Context, id uint64) (*Order, error)

	// FindAll returns every order ordered by ID
	FindAll(ctx context.Context) ([]*Order, error)

	// FindByUser returns the orders owned by userID ordered by ID
	FindByUser(ctx context.Context, userID uint64) ([]*Order, error)

	// ExistsByID checks whether an order exists
	ExistsByID(ctx context.Context, id uint64) (bool, error)

	// ExistsForUser checks whether userID owns at least one order
	ExistsForUser(ctx context.Context, userID uint64) (bool, error)
}

// OrderProductRepository persists the order/product association.
type OrderProductRepository interface {
	// Add inserts the pair. A pair that already exists yields shared.ErrDuplicateLink.
	Add(ctx context.Context, link *OrderProduct) error

	// Remove deletes the pair. A pair that does not exist yields shared.ErrMissingLink.
	Remove(ctx context.Context, orderID, productID uint64) error

	// Exists reports whether the pair is associated
	Exists(ctx context.Context, orderID, productID uint64) (bool, error)

	// FindProducts returns the products of orderID in association insertion order
	FindProducts(ctx context.Context, orderID uint64) ([]*catalog.Product, error)

	// IsProductReferenced reports whether any order contains productID
	IsProductReferenced(ctx context.Context, productID uint64) (bool, error)
}
