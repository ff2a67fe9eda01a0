package coupons

import (
	"context"
	"testing"

	"github.com/angelmondragon/moda-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/feed"
	"github.com/angelmondragon/moda-storefront/pkg/money"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNewCoupon(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		kind    enums.CouponKind
		value   decimal.Decimal
		min     decimal.Decimal
		wantErr bool
	}{
		{name: "percent", code: " nuevo10 ", kind: enums.CouponKindPercent, value: d(10), min: d(0)},
		{name: "fixed", code: "MODA300", kind: enums.CouponKindFixed, value: d(300), min: d(3000)},
		{name: "empty code", code: "  ", kind: enums.CouponKindFixed, value: d(1), wantErr: true},
		{name: "unknown kind", code: "X", kind: enums.CouponKind("bogo"), value: d(1), wantErr: true},
		{name: "zero value", code: "X", kind: enums.CouponKindFixed, value: d(0), wantErr: true},
		{name: "percent over 100", code: "X", kind: enums.CouponKindPercent, value: d(101), wantErr: true},
		{name: "negative min", code: "X", kind: enums.CouponKindFixed, value: d(1), min: d(-1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoupon(tt.code, tt.kind, tt.value, tt.min)
			if tt.wantErr {
				if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Code != NormalizeCode(tt.code) {
				t.Fatalf("expected normalized code, got %q", c.Code)
			}
		})
	}
}

func TestDiscount(t *testing.T) {
	percent := Coupon{Code: "P", Kind: enums.CouponKindPercent, Value: d(10), Min: d(0)}
	fixed := Coupon{Code: "F", Kind: enums.CouponKindFixed, Value: d(300), Min: d(3000)}
	big := Coupon{Code: "B", Kind: enums.CouponKindFixed, Value: d(5000), Min: d(0)}

	tests := []struct {
		name     string
		coupon   Coupon
		subtotal decimal.Decimal
		want     decimal.Decimal
	}{
		{name: "percent", coupon: percent, subtotal: d(2000), want: d(200)},
		{name: "percent rounds half up", coupon: percent, subtotal: d(1005), want: d(101)},
		{name: "percent rounds down", coupon: percent, subtotal: d(1004), want: d(100)},
		{name: "fixed below minimum", coupon: fixed, subtotal: d(2000), want: d(0)},
		{name: "fixed at minimum", coupon: fixed, subtotal: d(3000), want: d(300)},
		{name: "capped at subtotal", coupon: big, subtotal: d(800), want: d(800)},
		{name: "empty subtotal", coupon: percent, subtotal: d(0), want: d(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.Discount(tt.subtotal); !got.Equal(tt.want) {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	r, err := NewRegistry(Builtin())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	f := money.MustFormatter(money.DefaultLocale, money.DefaultCurrency)

	c, err := r.Resolve("moda300", d(3000), f)
	if err != nil || c.Code != "MODA300" {
		t.Fatalf("expected MODA300 at its minimum, got %+v %v", c, err)
	}

	_, err = r.Resolve("NOPE", d(5000), f)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidCoupon || typed.Message() != ReasonInvalid {
		t.Fatalf("expected invalid coupon error, got %v", err)
	}

	_, err = r.Resolve("MODA300", d(2999), f)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidCoupon {
		t.Fatalf("expected minimum rejection, got %v", err)
	}
	if want := "this coupon requires a minimum of " + f.Format(d(3000)); typed.Message() != want {
		t.Fatalf("got %q want %q", typed.Message(), want)
	}
}

func TestParseCoupons(t *testing.T) {
	list, err := ParseCoupons([]byte(`[{"code":"verano","type":"Percentage","value":15},{"code":"ENVIO","type":"fixed","value":"250","min":1000}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list) != 2 || list[0].Code != "VERANO" || list[0].Kind != enums.CouponKindPercent || !list[0].Min.IsZero() {
		t.Fatalf("unexpected coupons %+v", list)
	}
	if _, err := ParseCoupons([]byte(`[{"code":"X","type":"bogo","value":1}]`)); err == nil {
		t.Fatal("expected unknown kind to be rejected")
	}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(Builtin())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c, ok := r.Lookup(" nuevo10")
	if !ok || c.Code != "NUEVO10" {
		t.Fatalf("expected case-insensitive lookup, got %+v %v", c, ok)
	}
	if _, ok := r.Lookup("NOPE"); ok {
		t.Fatal("unknown code should not resolve")
	}
	if len(r.List()) != 2 {
		t.Fatalf("expected 2 coupons")
	}

	if _, err := NewRegistry([]Coupon{{Code: "a"}, {Code: "A"}}); err == nil {
		t.Fatal("expected duplicate codes to be rejected")
	}
}

func TestLoadUsesCacheBeforeBuiltin(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	if err := store.Set(ctx, storage.KeyCoupons, []byte(`[{"code":"CACHE5","type":"percent","value":5,"min":0}]`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r, origin, err := Load(ctx, store, feed.New(""), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if origin != feed.OriginCache {
		t.Fatalf("expected cache origin, got %s", origin)
	}
	if _, ok := r.Lookup("cache5"); !ok {
		t.Fatal("cached coupon should resolve")
	}
	if _, ok := r.Lookup("NUEVO10"); ok {
		t.Fatal("builtin coupons should not be merged into a cached registry")
	}
}
