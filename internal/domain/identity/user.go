package identity

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Field limits for User.
const (
	MaxNameLength    = 100
	MaxAddressLength = 200
	MaxEmailLength   = 100
)

// User is a customer account. Email is unique across all users and is
// stored lower-cased.
type User struct {
	shared.BaseEntity
	Name    string
	Address string
	Email   string

	// OrderIDs lists the identifiers of orders owned by the user in
	// ascending order. Populated by the repository on reads.
	OrderIDs []uint64
}

// NewUser creates a new user after validating every field.
func NewUser(name, address, email string) (*User, error) {
	fe := shared.FieldErrors{}
	fe.RequireText("name", name, MaxNameLength)
	fe.RequireText("address", address, MaxAddressLength)
	fe.RequireEmail("email", strings.TrimSpace(email), MaxEmailLength)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Address:    strings.TrimSpace(address),
		Email:      shared.NormalizeEmail(email),
		OrderIDs:   []uint64{},
	}, nil
}

// UserChanges carries a partial update. Nil fields keep their value.
type UserChanges struct {
	Name    *string
	Address *string
	Email   *string
}

// IsEmpty reports whether no field is set.
func (c UserChanges) IsEmpty() bool {
	return c.Name == nil && c.Address == nil && c.Email == nil
}

// Apply validates and applies changes. The user is left untouched on error.
func (u *User) Apply(c UserChanges) error {
	fe := shared.FieldErrors{}
	if c.Name != nil {
		fe.RequireText("name", *c.Name, MaxNameLength)
	}
	if c.Address != nil {
		fe.RequireText("address", *c.Address, MaxAddressLength)
	}
	if c.Email != nil {
		fe.RequireEmail("email", strings.TrimSpace(*c.Email), MaxEmailLength)
	}
	if err := fe.Err(); err != nil {
		return err
	}

	if c.Name != nil {
		u.Name = strings.TrimSpace(*c.Name)
	}
	if c.Address != nil {
		u.Address = strings.TrimSpace(*c.Address)
	}
	if c.Email != nil {
		u.Email = shared.NormalizeEmail(*c.Email)
	}
	u.Touch()
	return nil
}

// HasOrders reports whether the user owns at least one order.
func (u *User) HasOrders() bool {
	return len(u.OrderIDs) > 0
}

// ErrEmailTaken is returned when an email address already belongs to another user.
var ErrEmailTaken = shared.NewConflictError("EMAIL_TAKEN", "Email address is already registered")
