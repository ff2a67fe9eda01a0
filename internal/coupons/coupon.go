package coupons

import (
	"encoding/json"
	"strings"

	"github.com/angelmondragon/moda-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Coupon is an immutable discount code. Code is stored upper-cased.
type Coupon struct {
	Code  string           `json:"code"`
	Kind  enums.CouponKind `json:"type"`
	Value decimal.Decimal  `json:"value"`
	Min   decimal.Decimal  `json:"min"`
}

// NewCoupon normalizes the code and validates the discount definition.
func NewCoupon(code string, kind enums.CouponKind, value, min decimal.Decimal) (Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !kind.IsValid() {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown coupon kind").WithDetails(map[string]any{"code": code, "kind": string(kind)})
	}
	if !value.IsPositive() {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive").WithDetails(map[string]any{"code": code})
	}
	if kind == enums.CouponKindPercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "percent coupon value must not exceed 100").WithDetails(map[string]any{"code": code})
	}
	if min.IsNegative() {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon minimum must not be negative").WithDetails(map[string]any{"code": code})
	}
	return Coupon{Code: code, Kind: kind, Value: value, Min: min}, nil
}

// NormalizeCode is the canonical form codes are compared in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount returns the amount taken off subtotal, zero when subtotal is below
// the minimum. Percent discounts round half away from zero to a whole unit.
// The result never exceeds subtotal.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.LessThan(c.Min) {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch c.Kind {
	case enums.CouponKindPercent:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(0)
	case enums.CouponKindFixed:
		discount = c.Value
	}
	return decimal.Min(discount, subtotal)
}

type couponRecord struct {
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
	Min   decimal.Decimal `json:"min"`
}

// ParseCoupons decodes a JSON array of coupon definitions. min is optional.
func ParseCoupons(raw []byte) ([]Coupon, error) {
	var records []couponRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode coupons")
	}
	out := make([]Coupon, 0, len(records))
	for _, rec := range records {
		kind, err := enums.ParseCouponKind(rec.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode coupons").WithDetails(map[string]any{"code": rec.Code})
		}
		c, err := NewCoupon(rec.Code, kind, rec.Value, rec.Min)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Builtin returns the coupons used when no source or cache is available.
func Builtin() []Coupon {
	return []Coupon{
		{Code: "NUEVO10", Kind: enums.CouponKindPercent, Value: decimal.NewFromInt(10), Min: decimal.Zero},
		{Code: "MODA300", Kind: enums.CouponKindFixed, Value: decimal.NewFromInt(300), Min: decimal.NewFromInt(3000)},
	}
}
