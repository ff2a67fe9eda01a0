package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/moda-storefront/internal/catalog"
	"github.com/angelmondragon/moda-storefront/internal/coupons"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/metrics"
	"github.com/angelmondragon/moda-storefront/pkg/money"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	opAdd    = "add"
	opChange = "change_qty"
	opRemove = "remove"
	opClear  = "clear"

	outcomeApplied  = "applied"
	outcomeNoop     = "noop"
	outcomeRejected = "rejected"
)

// EngineParams wires the engine to the session it operates on.
type EngineParams struct {
	Catalog   *catalog.Catalog
	Coupons   *coupons.Registry
	Store     storage.Store
	Logger    *logger.Logger
	Metrics   *metrics.StorefrontMetrics
	Formatter *money.Formatter
}

// Engine owns the cart line items and the active coupon. Every stock change
// goes through the catalog's Reserve and Release, so for each product the
// catalog stock plus the cart quantity stays equal to the loaded stock.
//
// Clear is the only operation that drops the active coupon together with the
// items; a coupon otherwise stays active until ApplyCoupon replaces or
// rejects it.
type Engine struct {
	catalog   *catalog.Catalog
	coupons   *coupons.Registry
	store     storage.Store
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	formatter *money.Formatter

	items  []Item
	active *coupons.Coupon
}

// NewEngine builds an empty cart over the provided catalog and coupons.
func NewEngine(params EngineParams) (*Engine, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon registry required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	formatter := params.Formatter
	if formatter == nil {
		formatter = money.MustFormatter(money.DefaultLocale, money.DefaultCurrency)
	}
	return &Engine{
		catalog:   params.Catalog,
		coupons:   params.Coupons,
		store:     params.Store,
		logg:      logg,
		metrics:   params.Metrics,
		formatter: formatter,
	}, nil
}

// AddItem puts one unit of a product into the cart. Unknown products and
// products without available stock leave the cart unchanged.
func (e *Engine) AddItem(ctx context.Context, productID string) error {
	ctx = e.logg.WithProductID(ctx, productID)

	p, ok := e.catalog.Find(productID)
	if !ok {
		return e.noop(ctx, opAdd, "product not found")
	}
	if err := e.catalog.Reserve(productID, 1); err != nil {
		return e.noop(ctx, opAdd, err.Error())
	}
	if i := e.indexOf(productID); i >= 0 {
		e.items[i].Qty++
	} else {
		e.items = append(e.items, Item{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Qty: 1})
	}
	return e.commit(ctx, opAdd)
}

// ChangeQuantity adds delta to a line's quantity. A result of zero or less
// removes the line and releases all of its stock. Increases beyond the
// available stock and unknown lines leave the cart unchanged.
func (e *Engine) ChangeQuantity(ctx context.Context, productID string, delta int) error {
	ctx = e.logg.WithProductID(ctx, productID)

	if delta == 0 {
		return e.noop(ctx, opChange, "zero delta")
	}
	i := e.indexOf(productID)
	if i < 0 {
		return e.noop(ctx, opChange, "line item not found")
	}
	if _, ok := e.catalog.Find(productID); !ok {
		return e.noop(ctx, opChange, "product not found")
	}

	newQty := e.items[i].Qty + delta
	if newQty <= 0 {
		if err := e.removeAt(i); err != nil {
			return err
		}
		return e.commit(ctx, opChange)
	}
	if delta > 0 {
		if err := e.catalog.Reserve(productID, delta); err != nil {
			return e.noop(ctx, opChange, err.Error())
		}
	} else if err := e.catalog.Release(productID, -delta); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release stock")
	}
	e.items[i].Qty = newQty
	return e.commit(ctx, opChange)
}

// RemoveItem drops a line and releases its stock. Removing an absent line is a
// no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID string) error {
	ctx = e.logg.WithProductID(ctx, productID)

	i := e.indexOf(productID)
	if i < 0 {
		return e.noop(ctx, opRemove, "line item not found")
	}
	if err := e.removeAt(i); err != nil {
		return err
	}
	return e.commit(ctx, opRemove)
}

// Clear releases every line's stock, empties the cart and drops the active
// coupon.
func (e *Engine) Clear(ctx context.Context) error {
	for len(e.items) > 0 {
		if err := e.removeAt(len(e.items) - 1); err != nil {
			return err
		}
	}
	e.items = nil
	e.active = nil
	return e.commit(ctx, opClear)
}

// Totals computes item count, subtotal, discount and total without changing
// any state. The discount is zero unless the active coupon's minimum is met
// and never exceeds the subtotal.
func (e *Engine) Totals() Totals {
	t := Totals{Subtotal: decimal.Zero, Discount: decimal.Zero}
	for _, item := range e.items {
		t.ItemCount += item.Qty
		t.Subtotal = t.Subtotal.Add(item.LineTotal())
	}
	if e.active != nil {
		t.Discount = e.active.Discount(t.Subtotal)
	}
	t.Total = t.Subtotal.Sub(t.Discount)
	return t
}

// ApplyCoupon activates the coupon registered under code. An unknown code or a
// subtotal below the coupon's minimum clears any active coupon and reports the
// reason. Cart lines and stock are never touched.
func (e *Engine) ApplyCoupon(ctx context.Context, code string) (CouponResult, error) {
	normalized := coupons.NormalizeCode(code)
	ctx = e.logg.WithField(ctx, "coupon", normalized)

	c, err := e.coupons.Resolve(normalized, e.Totals().Subtotal, e.formatter)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeInvalidCoupon {
			return CouponResult{}, err
		}
		return e.rejectCoupon(ctx, normalized, typed.Message())
	}

	e.active = &c
	if err := e.persist(ctx); err != nil {
		return CouponResult{}, err
	}
	e.metrics.IncCoupon(outcomeApplied)
	e.logg.Info(ctx, "coupon applied")
	return CouponResult{Applied: true, Code: c.Code}, nil
}

// Items returns a copy of the cart lines in insertion order.
func (e *Engine) Items() []Item {
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// ActiveCoupon returns the coupon currently applied to the cart.
func (e *Engine) ActiveCoupon() (coupons.Coupon, bool) {
	if e.active == nil {
		return coupons.Coupon{}, false
	}
	return *e.active, true
}

func (e *Engine) rejectCoupon(ctx context.Context, code, reason string) (CouponResult, error) {
	e.active = nil
	if err := e.persist(ctx); err != nil {
		return CouponResult{}, err
	}
	e.metrics.IncCoupon(outcomeRejected)
	e.logg.Info(e.logg.WithField(ctx, "reason", reason), "coupon rejected")
	return CouponResult{Code: code, Reason: reason}, nil
}

func (e *Engine) indexOf(productID string) int {
	for i, item := range e.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) removeAt(i int) error {
	item := e.items[i]
	if err := e.catalog.Release(item.ProductID, item.Qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release stock")
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	return nil
}

// noop records an operation that left the cart unchanged. These are not
// reported to the caller.
func (e *Engine) noop(ctx context.Context, op, reason string) error {
	e.metrics.IncCartOp(op, outcomeNoop)
	e.logg.Debug(e.logg.WithFields(ctx, map[string]any{"op": op, "reason": reason}), "cart operation skipped")
	return nil
}

func (e *Engine) commit(ctx context.Context, op string) error {
	if err := e.persist(ctx); err != nil {
		return err
	}
	e.metrics.IncCartOp(op, outcomeApplied)
	return nil
}

// persist flushes the lines and the active coupon. The coupon key is removed
// when no coupon is active.
func (e *Engine) persist(ctx context.Context) error {
	items := e.items
	if items == nil {
		items = []Item{}
	}
	if err := storage.SetJSON(ctx, e.store, storage.KeyCart, items); err != nil {
		e.logg.Error(ctx, "failed to persist cart", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	var err error
	if e.active != nil {
		err = storage.SetJSON(ctx, e.store, storage.KeyActiveCoupon, e.active)
	} else {
		err = e.store.Remove(ctx, storage.KeyActiveCoupon)
	}
	if err != nil {
		e.logg.Error(ctx, "failed to persist active coupon", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist active coupon")
	}
	return nil
}
