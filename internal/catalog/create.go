package catalog

import (
	"strings"

	"github.com/angelmondragon/moda-storefront/pkg/validators"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewProductInput is the payload for listing a new product.
type NewProductInput struct {
	Name     string          `json:"name" validate:"min=2"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
	Stock    int             `json:"stock" validate:"gte=0"`
	Category string          `json:"category"`
}

var newProductMessages = validators.Messages{
	"name":  "name must have at least 2 characters",
	"price": "price must be greater than 0",
	"stock": "stock must be a whole number of at least 0",
}

// Create validates input, assigns a fresh id and appends the product.
func (c *Catalog) Create(input NewProductInput) (Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	if err := validators.Struct(input, newProductMessages); err != nil {
		return Product{}, err
	}
	p, err := NewProduct(uuid.NewString(), input.Name, input.Price, input.Stock, input.Category)
	if err != nil {
		return Product{}, err
	}
	if err := c.Add(p); err != nil {
		return Product{}, err
	}
	return p, nil
}
