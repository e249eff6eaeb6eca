package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user and copies the generated ID back.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return storeErrors{duplicate: identity.ErrEmailTaken}.translate("create user", err)
	}
	user.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

// Update writes name, address and email of an existing user.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":       user.Name,
			"address":    user.Address,
			"email":      user.Email,
			"updated_at": user.UpdatedAt,
		})
	if result.Error != nil {
		return storeErrors{duplicate: identity.ErrEmailTaken}.translate("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("user", user.ID)
	}
	return nil
}

// Delete removes the user. A user still referenced by orders is rejected by
// the foreign key and reported as a conflict.
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return storeErrors{
			foreignKey: shared.ErrInUse.WithMessage("user %d still has orders", id),
		}.translate("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("user", id)
	}
	return nil
}

// FindByID finds a user by its ID together with its order IDs
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, storeErrors{notFound: shared.NewNotFoundError("user", id)}.translate("find user", err)
	}
	users, err := r.withOrderIDs(ctx, []models.UserModel{model})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Where("email = ?", shared.NormalizeEmail(email)).First(&model).Error
	if err != nil {
		return nil, storeErrors{
			notFound: shared.ErrNotFound.WithMessage("user with email %s not found", email),
		}.translate("find user by email", err)
	}
	users, err := r.withOrderIDs(ctx, []models.UserModel{model})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// FindAll returns every user ordered by ID
func (r *GormUserRepository) FindAll(ctx context.Context) ([]*identity.User, error) {
	var ms []models.UserModel
	if err := r.db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return r.withOrderIDs(ctx, ms)
}

// ExistsByID checks whether a user exists
func (r *GormUserRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrap("check user", err)
	}
	return count > 0, nil
}

// ExistsByEmail checks whether a user other than excludeID uses email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("email = ?", shared.NormalizeEmail(email))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, wrap("check email", err)
	}
	return count > 0, nil
}

// withOrderIDs converts models to users and attaches their order IDs with a
// single query.
func (r *GormUserRepository) withOrderIDs(ctx context.Context, ms []models.UserModel) ([]*identity.User, error) {
	users := make([]*identity.User, len(ms))
	if len(ms) == 0 {
		return users, nil
	}
	byID := make(map[uint64]*identity.User, len(ms))
	ids := make([]uint64, len(ms))
	for i := range ms {
		users[i] = ms[i].ToDomain()
		byID[ms[i].ID] = users[i]
		ids[i] = ms[i].ID
	}

	var rows []struct {
		ID     uint64
		UserID uint64
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("id", "user_id").
		Where("user_id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, wrap("load user orders", err)
	}
	for _, row := range rows {
		if u, ok := byID[row.UserID]; ok {
			u.OrderIDs = append(u.OrderIDs, row.ID)
		}
	}
	return users, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
