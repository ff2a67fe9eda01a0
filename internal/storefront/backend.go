package storefront

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/moda-storefront/pkg/config"
	"github.com/angelmondragon/moda-storefront/pkg/db"
	"github.com/angelmondragon/moda-storefront/pkg/enums"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/redis"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
)

// openStore returns the key-value store for the configured driver together
// with the handles to close on shutdown.
func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, []io.Closer, error) {
	driver, err := cfg.Storage.DriverKind()
	if err != nil {
		return nil, nil, err
	}
	switch driver {
	case enums.StorageDriverMemory:
		return storage.NewMemory(), nil, nil
	case enums.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, cfg.Storage.Namespace, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		return client, []io.Closer{client}, nil
	case enums.StorageDriverSQLite, enums.StorageDriverPostgres:
		client, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s store: %w", driver, err)
		}
		return db.NewStateStore(client.DB()), []io.Closer{client}, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", driver)
}
