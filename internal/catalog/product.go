package catalog

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultCategory labels products loaded without a category.
const DefaultCategory = "General"

// Product is a sellable catalog entry. Stock is the quantity still available
// after cart reservations.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}

// NewProduct validates the required fields and applies defaults.
func NewProduct(id, name string, price decimal.Decimal, stock int, category string) (Product, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if id == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if name == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required").WithDetails(map[string]any{"id": id})
	}
	if price.IsNegative() {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative").WithDetails(map[string]any{"id": id})
	}
	if stock < 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product stock must not be negative").WithDetails(map[string]any{"id": id})
	}
	if category == "" {
		category = DefaultCategory
	}
	return Product{ID: id, Name: name, Price: price, Stock: stock, Category: category}, nil
}

// productRecord is the external/cached JSON shape; stock and category are optional.
type productRecord struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    *int            `json:"stock"`
	Category string          `json:"category"`
}

// ParseProducts decodes a JSON array of product definitions.
func ParseProducts(raw []byte) ([]Product, error) {
	var records []productRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode products")
	}
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		stock := 0
		if rec.Stock != nil {
			stock = *rec.Stock
		}
		p, err := NewProduct(rec.ID, rec.Name, rec.Price, stock, rec.Category)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
