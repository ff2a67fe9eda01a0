package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/moda-storefront/pkg/enums"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAll matches every category in a Query.
const CategoryAll = "all"

// Query narrows and orders a catalog listing.
type Query struct {
	Term     string
	Category string
	Sort     enums.SortOrder
}

// Filter returns the products matching q. Term matches name or category
// without regard to case; an empty category or CategoryAll matches all.
// Unknown sort orders keep catalog order.
func (c *Catalog) Filter(q Query) []Product {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	category := strings.TrimSpace(q.Category)
	anyCategory := category == "" || strings.EqualFold(category, CategoryAll)

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if !anyCategory && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case enums.SortAlphaAsc:
		col := newCollator()
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	case enums.SortAlphaDesc:
		col := newCollator()
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) > 0 })
	case enums.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}

// Categories returns the distinct product categories in collation order.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	col := newCollator()
	sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i], out[j]) < 0 })
	return out
}

func newCollator() *collate.Collator {
	return collate.New(language.Spanish)
}
