package identity

import (
	"context"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create inserts a new user and assigns its ID
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uint64) error

	// FindByID finds a user by ID, including its order IDs
	FindByID(ctx context.Context, id uint64) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll returns every user ordered by ID
	FindAll(ctx context.Context) ([]*User, error)

	// ExistsByID checks whether a user with the given ID exists
	ExistsByID(ctx context.Context, id uint64) (bool, error)

	// ExistsByEmail checks whether another user (ID != excludeID) already uses email
	ExistsByEmail(ctx context.Context, email string, excludeID uint64) (bool, error)
}
