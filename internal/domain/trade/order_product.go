package trade

import "time"

// OrderProduct is one row of the order/product association. The pair
// (OrderID, ProductID) is unique; ID records insertion order.
type OrderProduct struct {
	ID        uint64
	OrderID   uint64
	ProductID uint64
	CreatedAt time.Time
}

// NewOrderProduct links productID to orderID.
func NewOrderProduct(orderID, productID uint64) *OrderProduct {
	return &OrderProduct{
		OrderID:   orderID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
}
