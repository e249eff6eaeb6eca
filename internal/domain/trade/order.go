package trade

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// DateLayout is the wire and storage layout of an order date.
const DateLayout = "2006-01-02"

// Order is placed by exactly one user and contains a set of products.
// The product set lives in the order_product association and is managed
// through OrderProductRepository, never through the Order itself.
type Order struct {
	shared.BaseEntity
	UserID    uint64
	OrderDate time.Time
}

// NewOrder creates an order for userID. A zero orderDate defaults to the
// current UTC date.
func NewOrder(userID uint64, orderDate time.Time) (*Order, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		OrderDate:  TruncateDate(orderDate),
	}, nil
}

// OrderChanges carries a partial update. Nil fields keep their value.
type OrderChanges struct {
	UserID    *uint64
	OrderDate *time.Time
}

// IsEmpty reports whether no field is set.
func (c OrderChanges) IsEmpty() bool {
	return c.UserID == nil && c.OrderDate == nil
}

// Apply validates and applies changes. Whether a new owner exists is
// checked by the caller.
func (o *Order) Apply(c OrderChanges) error {
	if c.UserID != nil {
		if err := checkUserID(*c.UserID); err != nil {
			return err
		}
	}
	if c.OrderDate != nil && c.OrderDate.IsZero() {
		return shared.NewFieldError("order_date", "Not a valid date.")
	}

	if c.UserID != nil {
		o.UserID = *c.UserID
	}
	if c.OrderDate != nil {
		o.OrderDate = TruncateDate(*c.OrderDate)
	}
	o.Touch()
	return nil
}

func checkUserID(id uint64) error {
	switch {
	case id == 0:
		return shared.NewFieldError("user_id", "Must be a positive integer.")
	case id > shared.MaxID:
		return shared.NewFieldError("user_id", "Not a valid integer.")
	}
	return nil
}

// FormattedDate returns the order date as YYYY-MM-DD.
func (o *Order) FormattedDate() string {
	return o.OrderDate.Format(DateLayout)
}

// TruncateDate drops the clock part of t, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, shared.NewFieldError("order_date", "Not a valid date.")
	}
	return t, nil
}
