package storefront

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/moda-storefront/internal/cart"
	"github.com/angelmondragon/moda-storefront/internal/catalog"
	"github.com/angelmondragon/moda-storefront/internal/checkout"
	"github.com/angelmondragon/moda-storefront/internal/coupons"
	"github.com/angelmondragon/moda-storefront/internal/orders"
	"github.com/angelmondragon/moda-storefront/internal/profile"
	"github.com/angelmondragon/moda-storefront/pkg/config"
	"github.com/angelmondragon/moda-storefront/pkg/feed"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/metrics"
	"github.com/angelmondragon/moda-storefront/pkg/money"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Session is one shopper's storefront: the loaded catalog and coupons, the
// cart over them and the services that read and record its state.
type Session struct {
	ID        string
	Catalog   *catalog.Catalog
	Coupons   *coupons.Registry
	Cart      *cart.Engine
	Orders    *orders.Recorder
	Profiles  *profile.Service
	Checkout  *checkout.Service
	Formatter *money.Formatter

	CatalogOrigin feed.Origin
	CouponsOrigin feed.Origin

	store   storage.Store
	logg    *logger.Logger
	closers []io.Closer
}

// Open connects the configured storage backend, loads the catalog and coupons
// in parallel and restores the persisted cart.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	store, closers, err := openStore(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}
	s, err := newSession(ctx, cfg, store, logg, reg)
	if err != nil {
		return nil, multierr.Append(err, closeAll(closers))
	}
	s.closers = closers
	return s, nil
}

func newSession(ctx context.Context, cfg *config.Config, store storage.Store, logg *logger.Logger, reg prometheus.Registerer) (*Session, error) {
	formatter, err := money.NewFormatter(cfg.Checkout.Locale, cfg.Checkout.Currency)
	if err != nil {
		return nil, fmt.Errorf("checkout currency: %w", err)
	}

	id := uuid.NewString()
	ctx = logg.WithSessionID(ctx, id)
	m := metrics.NewStorefrontMetrics(reg)

	var (
		cat           *catalog.Catalog
		registry      *coupons.Registry
		catalogOrigin feed.Origin
		couponsOrigin feed.Origin
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		source := feed.New(cfg.Catalog.ProductsSource, feed.WithTimeout(cfg.Catalog.FetchTimeout))
		var err error
		cat, catalogOrigin, err = catalog.Load(gctx, store, source, logg)
		return err
	})
	g.Go(func() error {
		source := feed.New(cfg.Catalog.CouponsSource, feed.WithTimeout(cfg.Catalog.FetchTimeout))
		var err error
		registry, couponsOrigin, err = coupons.Load(gctx, store, source, logg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading storefront data: %w", err)
	}

	engine, err := cart.NewEngine(cart.EngineParams{
		Catalog:   cat,
		Coupons:   registry,
		Store:     store,
		Logger:    logg,
		Metrics:   m,
		Formatter: formatter,
	})
	if err != nil {
		return nil, err
	}
	if err := engine.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restoring cart: %w", err)
	}

	recorder, err := orders.NewRecorder(orders.RecorderParams{Store: store, Logger: logg, Metrics: m})
	if err != nil {
		return nil, err
	}
	profiles, err := profile.NewService(store, logg)
	if err != nil {
		return nil, err
	}
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Cart:      engine,
		Orders:    recorder,
		Profiles:  profiles,
		Logger:    logg,
		Metrics:   m,
		Formatter: formatter,
		Delay:     cfg.Checkout.Delay,
	})
	if err != nil {
		return nil, err
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"products":       cat.Len(),
		"catalog_origin": string(catalogOrigin),
		"coupons_origin": string(couponsOrigin),
		"cart_lines":     len(engine.Items()),
	}), "storefront session opened")

	return &Session{
		ID:            id,
		Catalog:       cat,
		Coupons:       registry,
		Cart:          engine,
		Orders:        recorder,
		Profiles:      profiles,
		Checkout:      checkoutSvc,
		Formatter:     formatter,
		CatalogOrigin: catalogOrigin,
		CouponsOrigin: couponsOrigin,
		store:         store,
		logg:          logg,
	}, nil
}

// Context returns ctx tagged with the session id for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	return s.logg.WithSessionID(ctx, s.ID)
}

// AddProduct validates and lists a new product, then refreshes the catalog
// cache.
func (s *Session) AddProduct(ctx context.Context, input catalog.NewProductInput) (catalog.Product, error) {
	p, err := s.Catalog.Create(input)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := catalog.Save(ctx, s.store, s.Catalog); err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, p.ID), "failed to cache catalog", err)
		return catalog.Product{}, err
	}
	s.logg.Info(s.logg.WithProductID(ctx, p.ID), "product added")
	return p, nil
}

// Close releases the storage backend.
func (s *Session) Close() error {
	err := closeAll(s.closers)
	s.closers = nil
	return err
}

func closeAll(closers []io.Closer) error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
