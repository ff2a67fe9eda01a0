package coupons

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/feed"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/money"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"github.com/shopspring/decimal"
)

// ReasonInvalid is the message of the error returned for an unknown code.
const ReasonInvalid = "invalid coupon"

// Registry is the read-only set of coupons loaded at startup. It is the only
// source coupon codes are resolved against.
type Registry struct {
	coupons []Coupon
	byCode  map[string]Coupon
}

// NewRegistry indexes coupons by normalized code. Duplicate codes are rejected.
func NewRegistry(list []Coupon) (*Registry, error) {
	r := &Registry{
		coupons: make([]Coupon, 0, len(list)),
		byCode:  make(map[string]Coupon, len(list)),
	}
	for _, c := range list {
		code := NormalizeCode(c.Code)
		if _, dup := r.byCode[code]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate coupon code %q", code))
		}
		c.Code = code
		r.byCode[code] = c
		r.coupons = append(r.coupons, c)
	}
	return r, nil
}

// Lookup resolves a code without regard to case or surrounding space.
func (r *Registry) Lookup(code string) (Coupon, bool) {
	c, ok := r.byCode[NormalizeCode(code)]
	return c, ok
}

// Resolve returns the coupon for code when subtotal meets its minimum. Both
// failures are CodeInvalidCoupon errors whose message is shown to the shopper;
// f renders the minimum amount.
func (r *Registry) Resolve(code string, subtotal decimal.Decimal, f *money.Formatter) (Coupon, error) {
	c, ok := r.Lookup(code)
	if !ok {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeInvalidCoupon, ReasonInvalid).WithDetails(map[string]any{"code": NormalizeCode(code)})
	}
	if subtotal.LessThan(c.Min) {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeInvalidCoupon, fmt.Sprintf("this coupon requires a minimum of %s", f.Format(c.Min))).WithDetails(map[string]any{
			"code":     c.Code,
			"min":      c.Min.String(),
			"subtotal": subtotal.String(),
		})
	}
	return c, nil
}

// List returns the coupons in load order.
func (r *Registry) List() []Coupon {
	out := make([]Coupon, len(r.coupons))
	copy(out, r.coupons)
	return out
}

// Load resolves the registry from the external source, the cached copy, or
// the built-in coupons, and caches the result.
func Load(ctx context.Context, store storage.Store, source feed.Fetcher, logg *logger.Logger) (*Registry, feed.Origin, error) {
	list, origin, err := feed.LoadList(ctx, store, feed.ListOptions[Coupon]{
		Name:     "coupons",
		CacheKey: storage.KeyCoupons,
		Fetcher:  source,
		Parse:    ParseCoupons,
		Builtin:  Builtin,
	}, logg)
	if err != nil {
		return nil, origin, err
	}
	r, err := NewRegistry(list)
	if err != nil {
		return nil, origin, err
	}
	return r, origin, nil
}
