package feed

import (
	"context"
	"errors"

	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
)

// Origin records where a loaded list came from.
type Origin string

const (
	OriginSource  Origin = "source"
	OriginCache   Origin = "cache"
	OriginBuiltin Origin = "builtin"
)

// ListOptions describes one list loaded with fallbacks.
type ListOptions[T any] struct {
	Name     string
	CacheKey string
	Fetcher  Fetcher
	Parse    func(raw []byte) ([]T, error)
	Builtin  func() []T
}

// LoadList resolves the list from the external source, then the cached copy in
// store, then the built-in defaults. The resolved list is written back to the
// cache. Only a failing cache write is returned as an error.
func LoadList[T any](ctx context.Context, store storage.Store, opts ListOptions[T], logg *logger.Logger) ([]T, Origin, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	ctx = logg.WithField(ctx, "feed", opts.Name)

	items, origin := resolve(ctx, store, opts, logg)
	if err := storage.SetJSON(ctx, store, opts.CacheKey, items); err != nil {
		return nil, origin, err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"origin": string(origin), "count": len(items)}), "feed loaded")
	return items, origin, nil
}

func resolve[T any](ctx context.Context, store storage.Store, opts ListOptions[T], logg *logger.Logger) ([]T, Origin) {
	if opts.Fetcher != nil {
		raw, err := opts.Fetcher.Fetch(ctx)
		if err == nil {
			items, parseErr := opts.Parse(raw)
			if parseErr == nil {
				return items, OriginSource
			}
			err = parseErr
		}
		if !errors.Is(err, ErrUnavailable) {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "feed source rejected")
		} else {
			logg.Debug(ctx, "feed source unavailable")
		}
	}

	raw, err := store.Get(ctx, opts.CacheKey)
	switch {
	case err == nil:
		items, parseErr := opts.Parse(raw)
		if parseErr == nil {
			return items, OriginCache
		}
		logg.Warn(logg.WithField(ctx, "error", parseErr.Error()), "feed cache rejected")
	case !errors.Is(err, storage.ErrNotFound):
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "feed cache unreadable")
	}

	logg.Warn(ctx, "falling back to built-in list")
	return opts.Builtin(), OriginBuiltin
}
