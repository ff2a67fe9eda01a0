package cart

import (
	"github.com/angelmondragon/moda-storefront/internal/coupons"
	"github.com/shopspring/decimal"
)

// Item is a cart line. Name and UnitPrice are copied from the product when the
// line is created and do not follow later catalog changes.
type Item struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
}

// LineTotal is Qty × UnitPrice.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Totals summarizes the cart at one point in time.
type Totals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// CouponResult reports the outcome of ApplyCoupon. Reason is set when the
// coupon was rejected.
type CouponResult struct {
	Applied bool
	Code    string
	Reason  string
}

// ReasonInvalidCoupon is the rejection reason for an unknown code.
const ReasonInvalidCoupon = coupons.ReasonInvalid
