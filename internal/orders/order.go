package orders

import (
	"time"

	"github.com/angelmondragon/moda-storefront/internal/cart"
	"github.com/angelmondragon/moda-storefront/internal/profile"
	"github.com/shopspring/decimal"
)

// Order is the immutable record of a completed checkout.
type Order struct {
	ID        string            `json:"id"`
	Items     []cart.Item       `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Discount  decimal.Decimal   `json:"discount"`
	Total     decimal.Decimal   `json:"total"`
	Coupon    *string           `json:"coupon"`
	Buyer     profile.BuyerInfo `json:"buyer"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ItemCount is the sum of line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Qty
	}
	return n
}

func (o Order) clone() Order {
	out := o
	out.Items = make([]cart.Item, len(o.Items))
	copy(out.Items, o.Items)
	if o.Coupon != nil {
		code := *o.Coupon
		out.Coupon = &code
	}
	return out
}
