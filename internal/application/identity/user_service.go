package identity

import (
	"context"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a new user. The email must not belong to another user.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	user, err := identity.NewUser(req.Name, req.Address, req.Email)
	if err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByEmail(ctx, user.Email, 0)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, identity.ErrEmailTaken
	}

	// The unique index still rejects a concurrent registration of the same email.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.Uint64("user_id", user.ID))
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves a user with the IDs of its orders
func (s *UserService) GetByID(ctx context.Context, id uint64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns all users in creation order
func (s *UserService) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	return ToUserResponses(users), nil
}

// Update applies the supplied fields to an existing user
func (s *UserService) Update(ctx context.Context, id uint64, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := req.Changes()
	if err := user.Apply(changes); err != nil {
		return nil, err
	}

	if changes.Email != nil {
		taken, err := s.userRepo.ExistsByEmail(ctx, user.Email, id)
		if err != nil {
			s.logger.Error("Failed to check email existence", zap.Error(err))
			return nil, err
		}
		if taken {
			return nil, identity.ErrEmailTaken
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User updated", zap.Uint64("user_id", id))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user. Users that still own orders cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.HasOrders() {
		return shared.ErrInUse.WithMessage("user %d still has orders", id)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.Uint64("user_id", id))
	return nil
}
