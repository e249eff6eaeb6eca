package catalog

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// Price is a decimal amount that travels as a JSON number with exactly
// catalog.PriceScale fractional digits, e.g. 19.90. Numeric strings are
// accepted on input.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps d
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// MarshalJSON writes the price as a bare JSON number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.StringFixed(catalog.PriceScale)), nil
}

// UnmarshalJSON accepts 12.5, 12 and "12.50". Anything else is a field error on price.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return invalidPrice()
		}
		data = []byte(s)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return invalidPrice()
	}
	p.Decimal = d
	return nil
}

func invalidPrice() error {
	return shared.NewFieldError("price", "Not a valid number.")
}
