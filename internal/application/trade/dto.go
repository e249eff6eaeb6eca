package trade

import (
	"time"

	"github.com/storefront/backend/internal/domain/trade"
)

// CreateOrderRequest represents a request to create an order. OrderDate is
// a YYYY-MM-DD date and defaults to today.
type CreateOrderRequest struct {
	UserID    *uint64 `json:"user_id" binding:"required"`
	OrderDate *string `json:"order_date"`
}

// UpdateOrderRequest represents a request to update an order. Omitted
// fields keep their current values.
type UpdateOrderRequest struct {
	UserID    *uint64 `json:"user_id"`
	OrderDate *string `json:"order_date"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	OrderDate string `json:"order_date"`
}

// ToOrderResponse converts a domain Order to a response DTO
func ToOrderResponse(o *trade.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		OrderDate: o.FormattedDate(),
	}
}

// ToOrderResponses converts a slice of domain orders to responses
func ToOrderResponses(orders []*trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}

// parseOptionalDate returns the zero time for a nil date.
func parseOptionalDate(s *string) (time.Time, error) {
	if s == nil {
		return time.Time{}, nil
	}
	return trade.ParseDate(*s)
}
