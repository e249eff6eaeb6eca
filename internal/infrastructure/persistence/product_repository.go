package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts the product and copies the generated ID back.
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return wrap("create product", err)
	}
	product.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

// Update writes name and price of an existing product.
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":       product.Name,
			"price":      product.Price,
			"updated_at": product.UpdatedAt,
		})
	if result.Error != nil {
		return wrap("update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("product", product.ID)
	}
	return nil
}

// Delete removes a product. Products still contained in an order are
// protected by the association's foreign key on product_id.
func (r *GormProductRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return storeErrors{
			foreignKey: shared.ErrInUse.WithMessage("product %d is contained in orders", id),
		}.translate("delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("product", id)
	}
	return nil
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uint64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, storeErrors{notFound: shared.NewNotFoundError("product", id)}.translate("find product", err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every product ordered by ID
func (r *GormProductRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	var ms []models.ProductModel
	if err := r.db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, wrap("list products", err)
	}
	return models.ProductsToDomain(ms), nil
}

// ExistsByID checks whether a product exists
func (r *GormProductRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrap("check product", err)
	}
	return count > 0, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
