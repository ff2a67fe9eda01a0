package enums

import (
	"fmt"
	"strings"
)

// CouponKind describes how a coupon value is applied to a subtotal.
type CouponKind string

const (
	CouponKindPercent CouponKind = "percent"
	CouponKindFixed   CouponKind = "fixed"
)

var validCouponKinds = []CouponKind{
	CouponKindPercent,
	CouponKindFixed,
}

// String implements fmt.Stringer.
func (c CouponKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponKind.
func (c CouponKind) IsValid() bool {
	for _, candidate := range validCouponKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponKind converts raw input into a CouponKind. Matching ignores case
// and accepts "percentage" as an alias for percent.
func ParseCouponKind(value string) (CouponKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "percentage" {
		normalized = string(CouponKindPercent)
	}
	for _, candidate := range validCouponKinds {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon kind %q", value)
}
