package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	MaxNameLength = 100
	// PriceScale is the number of decimal places kept for prices.
	PriceScale = 2
)

// maxPrice is the largest value that fits decimal(12,2).
var maxPrice = decimal.RequireFromString("9999999999.99")

// Product is a sellable item with a non-negative price.
type Product struct {
	shared.BaseEntity
	Name  string
	Price decimal.Decimal
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	fe := shared.FieldErrors{}
	fe.RequireText("name", name, MaxNameLength)
	validatePrice(fe, price)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Price:      price.Round(PriceScale),
	}, nil
}

// ProductChanges carries a partial update. Nil fields keep their value.
type ProductChanges struct {
	Name  *string
	Price *decimal.Decimal
}

// IsEmpty reports whether no field is set.
func (c ProductChanges) IsEmpty() bool {
	return c.Name == nil && c.Price == nil
}

// Apply validates and applies changes. The product is left untouched on error.
func (p *Product) Apply(c ProductChanges) error {
	fe := shared.FieldErrors{}
	if c.Name != nil {
		fe.RequireText("name", *c.Name, MaxNameLength)
	}
	if c.Price != nil {
		validatePrice(fe, *c.Price)
	}
	if err := fe.Err(); err != nil {
		return err
	}

	if c.Name != nil {
		p.Name = strings.TrimSpace(*c.Name)
	}
	if c.Price != nil {
		p.Price = c.Price.Round(PriceScale)
	}
	p.Touch()
	return nil
}

func validatePrice(fe shared.FieldErrors, price decimal.Decimal) {
	if price.IsNegative() {
		fe.Add("price", "Must be greater than or equal to 0.")
		return
	}
	if price.Round(PriceScale).GreaterThan(maxPrice) {
		fe.Add("price", "Must be less than or equal to 9999999999.99.")
	}
}
