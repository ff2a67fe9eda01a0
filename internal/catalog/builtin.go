package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var builtinNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://moda-storefront/catalog"))

// BuiltinID derives the stable id of a built-in product from its name so a
// persisted cart keeps pointing at the same products across restarts.
func BuiltinID(name string) string {
	return uuid.NewSHA1(builtinNamespace, []byte(strings.ToLower(name))).String()
}

// Builtin returns the fallback catalog used when no source or cache is available.
func Builtin() []Product {
	return []Product{
		{ID: BuiltinID("Camisa"), Name: "Camisa", Price: decimal.NewFromInt(1500), Stock: 20, Category: "Ropa"},
		{ID: BuiltinID("Pantalón"), Name: "Pantalón", Price: decimal.NewFromInt(2300), Stock: 20, Category: "Ropa"},
		{ID: BuiltinID("Championes"), Name: "Championes", Price: decimal.NewFromInt(4500), Stock: 15, Category: "Calzado"},
		{ID: BuiltinID("Gorra"), Name: "Gorra", Price: decimal.NewFromInt(800), Stock: 25, Category: "Accesorio"},
	}
}
