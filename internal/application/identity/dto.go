package identity

import (
	"github.com/storefront/backend/internal/domain/identity"
)

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email,max=100"`
}

// UpdateUserRequest represents a request to update a user. Omitted fields
// keep their current values.
type UpdateUserRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100"`
	Address *string `json:"address" binding:"omitempty,max=200"`
	Email   *string `json:"email" binding:"omitempty,email,max=100"`
}

// Changes converts the request into domain changes
func (r UpdateUserRequest) Changes() identity.UserChanges {
	return identity.UserChanges{
		Name:    r.Name,
		Address: r.Address,
		Email:   r.Email,
	}
}

// UserResponse represents a user in API responses. Orders lists the IDs of
// the orders the user owns.
type UserResponse struct {
	ID      uint64   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Email   string   `json:"email"`
	Orders  []uint64 `json:"orders"`
}

// ToUserResponse converts a domain User to a response DTO
func ToUserResponse(u *identity.User) UserResponse {
	orders := make([]uint64, len(u.OrderIDs))
	copy(orders, u.OrderIDs)
	return UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Address: u.Address,
		Email:   u.Email,
		Orders:  orders,
	}
}

// ToUserResponses converts a slice of domain users to responses
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}
