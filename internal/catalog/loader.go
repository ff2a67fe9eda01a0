package catalog

import (
	"context"

	"github.com/angelmondragon/moda-storefront/pkg/feed"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
)

// Load resolves the catalog from the external source, the cached copy, or the
// built-in list, and caches the result.
func Load(ctx context.Context, store storage.Store, source feed.Fetcher, logg *logger.Logger) (*Catalog, feed.Origin, error) {
	products, origin, err := feed.LoadList(ctx, store, feed.ListOptions[Product]{
		Name:     "products",
		CacheKey: storage.KeyProducts,
		Fetcher:  source,
		Parse:    ParseProducts,
		Builtin:  Builtin,
	}, logg)
	if err != nil {
		return nil, origin, err
	}
	c, err := New(products)
	if err != nil {
		return nil, origin, err
	}
	return c, origin, nil
}

// Save writes the catalog snapshot to the products cache.
func Save(ctx context.Context, store storage.Store, c *Catalog) error {
	return storage.SetJSON(ctx, store, storage.KeyProducts, c.Snapshot())
}
