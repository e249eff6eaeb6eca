package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func missingOwner(userID uint64) error {
	return shared.NewNotFoundError("user", userID)
}

// Create inserts the order and copies the generated ID back.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return storeErrors{foreignKey: missingOwner(order.UserID)}.translate("create order", err)
	}
	order.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

// Update writes owner and date of an existing order.
func (r *GormOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"user_id":    model.UserID,
			"order_date": model.OrderDate,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return storeErrors{foreignKey: missingOwner(order.UserID)}.translate("update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("order", order.ID)
	}
	return nil
}

// Delete removes the order and its association rows in one transaction.
// The association rows are removed explicitly so the result does not depend
// on the driver enforcing ON DELETE CASCADE.
func (r *GormOrderRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderProductModel{}).Error; err != nil {
			return wrap("delete order products", err)
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return wrap("delete order", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("order", id)
		}
		return nil
	})
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint64) (*trade.Order, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an order and, where the driver supports it, locks
// the row until the surrounding transaction ends.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*trade.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormOrderRepository) find(db *gorm.DB, id uint64) (*trade.Order, error) {
	var model models.OrderModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, storeErrors{notFound: shared.NewNotFoundError("order", id)}.translate("find order", err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every order ordered by ID
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*trade.Order, error) {
	return r.list(r.db.WithContext(ctx), "list orders")
}

// FindByUser returns the orders owned by userID ordered by ID
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uint64) ([]*trade.Order, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID), "list user orders")
}

func (r *GormOrderRepository) list(db *gorm.DB, op string) ([]*trade.Order, error) {
	var ms []models.OrderModel
	if err := db.Order("id").Find(&ms).Error; err != nil {
		return nil, wrap(op, err)
	}
	orders := make([]*trade.Order, len(ms))
	for i := range ms {
		orders[i] = ms[i].ToDomain()
	}
	return orders, nil
}

// ExistsByID checks whether an order exists
func (r *GormOrderRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

// ExistsForUser checks whether userID owns at least one order
func (r *GormOrderRepository) ExistsForUser(ctx context.Context, userID uint64) (bool, error) {
	return r.exists(ctx, "user_id = ?", userID)
}

func (r *GormOrderRepository) exists(ctx context.Context, cond string, arg uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, wrap("check order", err)
	}
	return count > 0, nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
