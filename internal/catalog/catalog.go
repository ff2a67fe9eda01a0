package catalog

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
)

// Catalog holds the sellable products in load order and tracks how much of
// each product's stock is reserved by cart line items. For every product,
// Stock + reserved equals the stock it was loaded with.
type Catalog struct {
	products []Product
	index    map[string]int
	reserved map[string]int
}

// New builds a catalog from validated products. Duplicate ids are rejected.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
		reserved: make(map[string]int),
	}
	for _, p := range products {
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a product to the catalog.
func (c *Catalog) Add(p Product) error {
	if _, exists := c.index[p.ID]; exists {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product id %q", p.ID))
	}
	c.index[p.ID] = len(c.products)
	c.products = append(c.products, p)
	return nil
}

// Find returns a copy of the product with the given id.
func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// List returns the products in load order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Reserved reports the quantity of a product currently held by the cart.
func (c *Catalog) Reserved(id string) int {
	return c.reserved[id]
}

// Reserve moves qty units of a product from available stock into the cart.
func (c *Catalog) Reserve(id string, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}
	i, ok := c.index[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": id})
	}
	if c.products[i].Stock < qty {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").WithDetails(map[string]any{
			"product_id": id,
			"available":  c.products[i].Stock,
			"requested":  qty,
		})
	}
	c.products[i].Stock -= qty
	c.reserved[id] += qty
	return nil
}

// Release returns qty reserved units of a product to available stock.
func (c *Catalog) Release(id string, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
	}
	i, ok := c.index[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": id})
	}
	if c.reserved[id] < qty {
		return pkgerrors.New(pkgerrors.CodeInternal, "release exceeds reservation").WithDetails(map[string]any{
			"product_id": id,
			"reserved":   c.reserved[id],
			"requested":  qty,
		})
	}
	c.products[i].Stock += qty
	c.reserved[id] -= qty
	if c.reserved[id] == 0 {
		delete(c.reserved, id)
	}
	return nil
}

// Snapshot returns the products with reservations added back to stock, the
// form written to the catalog cache.
func (c *Catalog) Snapshot() []Product {
	out := c.List()
	for i := range out {
		out[i].Stock += c.reserved[out[i].ID]
	}
	return out
}
