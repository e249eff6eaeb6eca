package catalog

import (
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Price *Price `json:"price" binding:"required"`
}

// UpdateProductRequest represents a request to update a product. Omitted
// fields keep their current values.
type UpdateProductRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Price *Price  `json:"price"`
}

// Changes converts the request into domain changes
func (r UpdateProductRequest) Changes() catalog.ProductChanges {
	changes := catalog.ProductChanges{Name: r.Name}
	if r.Price != nil {
		price := r.Price.Decimal
		changes.Price = &price
	}
	return changes
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// ToProductResponse converts a domain Product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:    p.ID,
		Name:  p.Name,
		Price: NewPrice(p.Price),
	}
}

// ToProductResponses converts a slice of domain products to responses
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}
