package cart

import (
	"context"

	"github.com/angelmondragon/moda-storefront/internal/coupons"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
)

// Restore replaces the in-memory cart with the persisted one and reserves its
// stock again. Lines whose product no longer exists are dropped and quantities
// above the available stock are trimmed. A persisted coupon is resolved
// against the registry and dropped when the code is no longer registered.
func (e *Engine) Restore(ctx context.Context) error {
	var saved []Item
	if _, err := storage.GetJSON(ctx, e.store, storage.KeyCart, &saved); err != nil {
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "persisted cart unreadable, starting empty")
		saved = nil
	}
	var savedCoupon *coupons.Coupon
	if _, err := storage.GetJSON(ctx, e.store, storage.KeyActiveCoupon, &savedCoupon); err != nil {
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "persisted coupon unreadable, dropping it")
		savedCoupon = nil
	}

	for len(e.items) > 0 {
		if err := e.removeAt(len(e.items) - 1); err != nil {
			return err
		}
	}
	e.items = nil
	e.active = nil

	dropped := 0
	for _, item := range saved {
		itemCtx := e.logg.WithProductID(ctx, item.ProductID)
		p, ok := e.catalog.Find(item.ProductID)
		if !ok || item.Qty <= 0 {
			dropped++
			e.logg.Warn(itemCtx, "dropping persisted cart line")
			continue
		}
		qty := min(item.Qty, p.Stock)
		if qty <= 0 {
			dropped++
			e.logg.Warn(itemCtx, "dropping persisted cart line without stock")
			continue
		}
		if err := e.catalog.Reserve(item.ProductID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve restored line")
		}
		if qty < item.Qty {
			e.logg.Warn(e.logg.WithFields(itemCtx, map[string]any{"saved_qty": item.Qty, "qty": qty}), "trimmed persisted cart line to available stock")
		}
		if i := e.indexOf(item.ProductID); i >= 0 {
			e.items[i].Qty += qty
			continue
		}
		item.Qty = qty
		e.items = append(e.items, item)
	}

	if savedCoupon != nil {
		if c, ok := e.coupons.Lookup(savedCoupon.Code); ok {
			e.active = &c
		} else {
			e.logg.Warn(e.logg.WithField(ctx, "coupon", savedCoupon.Code), "dropping persisted coupon no longer registered")
		}
	}

	e.logg.Info(e.logg.WithFields(ctx, map[string]any{"lines": len(e.items), "dropped": dropped}), "cart restored")
	return e.persist(ctx)
}
