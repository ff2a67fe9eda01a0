package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Fixed key names for every persisted blob.
const (
	KeyProducts     = "pf_moda_products"
	KeyCoupons      = "pf_moda_coupons"
	KeyCart         = "pf_moda_cart"
	KeyActiveCoupon = "pf_moda_active_coupon"
	KeyProfile      = "pf_moda_profile"
	KeyOrders       = "pf_moda_orders"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the key-value surface session state is persisted through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// GetJSON decodes the blob stored at key into dest. It reports false when the
// key is absent.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
