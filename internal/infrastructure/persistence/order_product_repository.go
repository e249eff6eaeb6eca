package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderProductRepository implements OrderProductRepository using GORM.
// The unique index idx_order_product_pair is the final arbiter of
// membership: concurrent inserts of the same pair fail with a duplicate key
// which is reported as shared.ErrDuplicateLink.
type GormOrderProductRepository struct {
	db *gorm.DB
}

// NewGormOrderProductRepository creates a new GormOrderProductRepository
func NewGormOrderProductRepository(db *gorm.DB) *GormOrderProductRepository {
	return &GormOrderProductRepository{db: db}
}

// Add inserts the association row.
func (r *GormOrderProductRepository) Add(ctx context.Context, link *trade.OrderProduct) error {
	model := models.OrderProductModelFromDomain(link)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error
	if err != nil {
		return storeErrors{
			duplicate:  shared.ErrDuplicateLink,
			foreignKey: shared.ErrNotFound.WithMessage("order %d or product %d not found", link.OrderID, link.ProductID),
		}.translate("add order product", err)
	}
	link.ID = model.ID
	link.CreatedAt = model.CreatedAt
	return nil
}

// Remove deletes exactly the row of the pair. Zero affected rows means the
// pair was not associated, possibly because a concurrent caller removed it.
func (r *GormOrderProductRepository) Remove(ctx context.Context, orderID, productID uint64) error {
	result := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&models.OrderProductModel{})
	if result.Error != nil {
		return wrap("remove order product", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrMissingLink
	}
	return nil
}

// Exists reports whether the pair is associated
func (r *GormOrderProductRepository) Exists(ctx context.Context, orderID, productID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderProductModel{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error
	if err != nil {
		return false, wrap("check order product", err)
	}
	return count > 0, nil
}

// FindProducts returns the products of orderID in the order they were added
func (r *GormOrderProductRepository) FindProducts(ctx context.Context, orderID uint64) ([]*catalog.Product, error) {
	var ms []models.ProductModel
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("products.*").
		Joins("JOIN order_product ON order_product.product_id = products.id").
		Where("order_product.order_id = ?", orderID).
		Order("order_product.id").
		Find(&ms).Error
	if err != nil {
		return nil, wrap("list order products", err)
	}
	return models.ProductsToDomain(ms), nil
}

// IsProductReferenced reports whether any order contains productID
func (r *GormOrderProductRepository) IsProductReferenced(ctx context.Context, productID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderProductModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return false, wrap("check product references", err)
	}
	return count > 0, nil
}

var _ trade.OrderProductRepository = (*GormOrderProductRepository)(nil)
