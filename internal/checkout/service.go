package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/moda-storefront/internal/cart"
	"github.com/angelmondragon/moda-storefront/internal/coupons"
	"github.com/angelmondragon/moda-storefront/internal/orders"
	"github.com/angelmondragon/moda-storefront/internal/profile"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/metrics"
	"github.com/angelmondragon/moda-storefront/pkg/money"
	"github.com/angelmondragon/moda-storefront/pkg/validators"
)

// DefaultDelay is the simulated processing time of a checkout.
const DefaultDelay = 600 * time.Millisecond

type cartSession interface {
	Items() []cart.Item
	Totals() cart.Totals
	ActiveCoupon() (coupons.Coupon, bool)
	Clear(ctx context.Context) error
}

type orderRecorder interface {
	CreateOrder(ctx context.Context, source orders.CartSource, buyer profile.BuyerInfo) (orders.Order, error)
}

type profileSaver interface {
	Save(ctx context.Context, info profile.BuyerInfo) error
}

type ServiceParams struct {
	Cart      cartSession
	Orders    orderRecorder
	Profiles  profileSaver
	Logger    *logger.Logger
	Metrics   *metrics.StorefrontMetrics
	Formatter *money.Formatter
	Delay     time.Duration
}

// Request is a checkout attempt. SaveProfile stores Buyer for the next prefill.
type Request struct {
	Buyer       profile.BuyerInfo
	SaveProfile bool
}

// Result is a confirmed checkout.
type Result struct {
	Order          orders.Order
	FormattedTotal string
}

// Service runs the checkout flow over a single cart.
type Service struct {
	cart      cartSession
	orders    orderRecorder
	profiles  profileSaver
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	formatter *money.Formatter
	delay     time.Duration
	sleep     func(time.Duration)
	now       func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order recorder required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile store required")
	}
	if params.Delay < 0 {
		return nil, fmt.Errorf("delay must not be negative")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	formatter := params.Formatter
	if formatter == nil {
		formatter = money.MustFormatter(money.DefaultLocale, money.DefaultCurrency)
	}
	return &Service{
		cart:      params.Cart,
		orders:    params.Orders,
		profiles:  params.Profiles,
		logg:      logg,
		metrics:   params.Metrics,
		formatter: formatter,
		delay:     params.Delay,
		sleep:     time.Sleep,
		now:       time.Now,
	}, nil
}

// Checkout validates the cart and buyer, optionally saves the profile, waits
// out the processing delay, records the order and clears the cart. A failed
// validation returns a CodeValidation error listing every message and leaves
// all state untouched. Once validation passes the flow is not cancelled by ctx.
func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	buyer := req.Buyer.Normalize()

	if messages := Validate(s.cart.Totals(), buyer); len(messages) > 0 {
		s.metrics.IncCheckoutRejected()
		s.logg.Info(s.logg.WithField(ctx, "messages", messages), "checkout rejected")
		return Result{}, validators.NewFailure(messages)
	}

	ctx = context.WithoutCancel(ctx)
	if req.SaveProfile {
		if err := s.profiles.Save(ctx, buyer); err != nil {
			return Result{}, err
		}
	}

	s.sleep(s.delay)

	order, err := s.orders.CreateOrder(ctx, s.cart, buyer)
	if err != nil {
		return Result{}, err
	}
	if err := s.cart.Clear(ctx); err != nil {
		return Result{}, err
	}

	s.metrics.ObserveCheckout(s.now().Sub(start))
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID), "checkout complete")
	return Result{Order: order, FormattedTotal: s.formatter.Format(order.Total)}, nil
}
