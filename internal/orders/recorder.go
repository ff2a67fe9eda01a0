package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/moda-storefront/internal/cart"
	"github.com/angelmondragon/moda-storefront/internal/coupons"
	"github.com/angelmondragon/moda-storefront/internal/profile"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/metrics"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"github.com/google/uuid"
)

const (
	idPrefix      = "ORD-"
	idLength      = 8
	maxIDAttempts = 5
)

// CartSource is the read side of the cart an order is taken from.
type CartSource interface {
	Items() []cart.Item
	Totals() cart.Totals
	ActiveCoupon() (coupons.Coupon, bool)
}

type RecorderParams struct {
	Store   storage.Store
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Recorder snapshots carts into orders and keeps the append-only history.
type Recorder struct {
	store   storage.Store
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
	newID   func() string
}

func NewRecorder(params RecorderParams) (*Recorder, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Recorder{
		store:   params.Store,
		logg:    logg,
		metrics: params.Metrics,
		now:     time.Now,
		newID:   generateID,
	}, nil
}

// CreateOrder copies the cart lines, totals and active coupon code together
// with buyer into a new order and appends it to the history. The cart itself
// is left untouched; later cart changes do not reach the recorded order.
func (r *Recorder) CreateOrder(ctx context.Context, source CartSource, buyer profile.BuyerInfo) (Order, error) {
	items := source.Items()
	if len(items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot record an order for an empty cart")
	}

	history, err := r.History(ctx)
	if err != nil {
		return Order{}, err
	}
	id, err := r.uniqueID(history)
	if err != nil {
		return Order{}, err
	}

	totals := source.Totals()
	order := Order{
		ID:        id,
		Items:     items,
		Subtotal:  totals.Subtotal,
		Discount:  totals.Discount,
		Total:     totals.Total,
		Buyer:     buyer.Normalize(),
		CreatedAt: r.now().UTC(),
	}
	if c, ok := source.ActiveCoupon(); ok {
		code := c.Code
		order.Coupon = &code
	}
	order = order.clone()

	history = append(history, order)
	if err := storage.SetJSON(ctx, r.store, storage.KeyOrders, history); err != nil {
		r.logg.Error(ctx, "failed to append order", err)
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order")
	}

	r.metrics.IncOrders()
	logCtx := r.logg.WithOrderID(ctx, order.ID)
	r.logg.Info(r.logg.WithFields(logCtx, map[string]any{
		"items": order.ItemCount(),
		"total": order.Total.String(),
	}), "order recorded")
	return order.clone(), nil
}

// History returns the recorded orders, oldest first.
func (r *Recorder) History(ctx context.Context) ([]Order, error) {
	var history []Order
	if _, err := storage.GetJSON(ctx, r.store, storage.KeyOrders, &history); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	return history, nil
}

func (r *Recorder) uniqueID(history []Order) (string, error) {
	taken := make(map[string]struct{}, len(history))
	for _, o := range history {
		taken[o.ID] = struct{}{}
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := r.newID()
		if _, dup := taken[id]; !dup {
			return id, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order id")
}

func generateID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return idPrefix + strings.ToUpper(raw[:idLength])
}
