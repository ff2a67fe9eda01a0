package catalog

import (
	"context"
	"reflect"
	"testing"

	"github.com/angelmondragon/moda-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/feed"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"github.com/angelmondragon/moda-storefront/pkg/validators"
	"github.com/shopspring/decimal"
)

func mustCatalog(t *testing.T, products ...Product) *Catalog {
	t.Helper()
	c, err := New(products)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return c
}

func product(id, name string, price int64, stock int, category string) Product {
	return Product{ID: id, Name: name, Price: decimal.NewFromInt(price), Stock: stock, Category: category}
}

func TestNewProductValidation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		pname   string
		price   decimal.Decimal
		stock   int
		wantErr bool
	}{
		{name: "valid", id: "p1", pname: "Camisa", price: decimal.NewFromInt(1500), stock: 3},
		{name: "zero price allowed", id: "p1", pname: "Camisa", price: decimal.Zero},
		{name: "missing id", id: " ", pname: "Camisa", price: decimal.NewFromInt(1), wantErr: true},
		{name: "missing name", id: "p1", pname: "", price: decimal.NewFromInt(1), wantErr: true},
		{name: "negative price", id: "p1", pname: "Camisa", price: decimal.NewFromInt(-1), wantErr: true},
		{name: "negative stock", id: "p1", pname: "Camisa", price: decimal.NewFromInt(1), stock: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.id, tt.pname, tt.price, tt.stock, "")
			if tt.wantErr {
				if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Category != DefaultCategory {
				t.Fatalf("expected default category, got %q", p.Category)
			}
		})
	}
}

func TestParseProductsDefaults(t *testing.T) {
	products, err := ParseProducts([]byte(`[{"id":"p1","name":"Camisa","price":1500},{"id":"p2","name":"Gorra","price":"800","stock":4,"category":"Accesorio"}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Stock != 0 || products[0].Category != DefaultCategory {
		t.Fatalf("expected defaults on first product, got %+v", products[0])
	}
	if !products[1].Price.Equal(decimal.NewFromInt(800)) || products[1].Stock != 4 {
		t.Fatalf("unexpected second product %+v", products[1])
	}

	if _, err := ParseProducts([]byte(`{"id":"p1"}`)); err == nil {
		t.Fatal("expected non-array document to be rejected")
	}
	if _, err := ParseProducts([]byte(`[{"id":"p1","name":"Camisa","price":-5}]`)); err == nil {
		t.Fatal("expected invalid record to be rejected")
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]Product{product("p1", "A", 1, 1, "X"), product("p1", "B", 1, 1, "X")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected duplicate id to be rejected, got %v", err)
	}
}

func TestReserveAndRelease(t *testing.T) {
	c := mustCatalog(t, product("p1", "Camisa", 1500, 2, "Ropa"))

	if err := c.Reserve("missing", 1); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := c.Reserve("p1", 3); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if err := c.Reserve("p1", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p, _ := c.Find("p1")
	if p.Stock != 0 || c.Reserved("p1") != 2 {
		t.Fatalf("expected stock 0 reserved 2, got %d/%d", p.Stock, c.Reserved("p1"))
	}
	if snap := c.Snapshot(); snap[0].Stock != 2 {
		t.Fatalf("snapshot should add reservations back, got %d", snap[0].Stock)
	}

	if err := c.Release("p1", 3); !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected over-release to fail, got %v", err)
	}
	if err := c.Release("p1", 2); err != nil {
		t.Fatalf("release: %v", err)
	}
	p, _ = c.Find("p1")
	if p.Stock != 2 || c.Reserved("p1") != 0 {
		t.Fatalf("expected stock restored, got %d/%d", p.Stock, c.Reserved("p1"))
	}
	if err := c.Reserve("p1", 0); err == nil {
		t.Fatal("expected zero reservation to fail")
	}
}

func TestFindReturnsCopy(t *testing.T) {
	c := mustCatalog(t, product("p1", "Camisa", 1500, 2, "Ropa"))
	p, _ := c.Find("p1")
	p.Stock = 99
	again, _ := c.Find("p1")
	if again.Stock != 2 {
		t.Fatalf("mutating a found product leaked into the catalog")
	}
}

func names(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	c := mustCatalog(t,
		product("1", "Pantalón", 2300, 20, "Ropa"),
		product("2", "Camisa", 1500, 20, "Ropa"),
		product("3", "Championes", 4500, 15, "Calzado"),
		product("4", "Gorra", 800, 25, "Accesorio"),
	)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "all in catalog order", query: Query{}, want: []string{"Pantalón", "Camisa", "Championes", "Gorra"}},
		{name: "term matches name", query: Query{Term: "  CAM "}, want: []string{"Camisa"}},
		{name: "term matches category", query: Query{Term: "ropa"}, want: []string{"Pantalón", "Camisa"}},
		{name: "category filter", query: Query{Category: "calzado"}, want: []string{"Championes"}},
		{name: "category all", query: Query{Category: CategoryAll, Sort: enums.SortPriceAsc}, want: []string{"Gorra", "Camisa", "Pantalón", "Championes"}},
		{name: "price desc", query: Query{Sort: enums.SortPriceDesc}, want: []string{"Championes", "Pantalón", "Camisa", "Gorra"}},
		{name: "alpha asc", query: Query{Sort: enums.SortAlphaAsc}, want: []string{"Camisa", "Championes", "Gorra", "Pantalón"}},
		{name: "alpha desc", query: Query{Sort: enums.SortAlphaDesc}, want: []string{"Pantalón", "Gorra", "Championes", "Camisa"}},
		{name: "no match", query: Query{Term: "zapato"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(c.Filter(tt.query)); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}

	if got := c.Categories(); !reflect.DeepEqual(got, []string{"Accesorio", "Calzado", "Ropa"}) {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestCreate(t *testing.T) {
	c := mustCatalog(t)

	_, err := c.Create(NewProductInput{Name: " B ", Price: decimal.Zero, Stock: -2})
	want := []string{
		"name must have at least 2 characters",
		"price must be greater than 0",
		"stock must be a whole number of at least 0",
	}
	if got := validators.MessagesOf(err); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected messages %v", got)
	}
	if c.Len() != 0 {
		t.Fatalf("invalid product should not be added")
	}

	p, err := c.Create(NewProductInput{Name: " Buzo ", Price: decimal.NewFromInt(2900), Stock: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || p.Name != "Buzo" || p.Category != DefaultCategory {
		t.Fatalf("unexpected product %+v", p)
	}
	if _, ok := c.Find(p.ID); !ok {
		t.Fatalf("created product not found")
	}
}

func TestLoadFallsBackToBuiltinAndSave(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	c, origin, err := Load(ctx, store, feed.New(""), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if origin != feed.OriginBuiltin || c.Len() != 4 {
		t.Fatalf("expected builtin catalog, got %s with %d", origin, c.Len())
	}
	camisa, ok := c.Find(BuiltinID("camisa"))
	if !ok || camisa.Name != "Camisa" {
		t.Fatalf("builtin ids should be derived from names")
	}

	if err := c.Reserve(camisa.ID, 5); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := Save(ctx, store, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, origin, err := Load(ctx, store, feed.New(""), nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if origin != feed.OriginCache {
		t.Fatalf("expected cached catalog, got %s", origin)
	}
	again, _ := reloaded.Find(camisa.ID)
	if again.Stock != 20 {
		t.Fatalf("cache should hold load-time stock, got %d", again.Stock)
	}
}
