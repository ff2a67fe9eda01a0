package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/moda-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
)

// BuyerInfo is the contact and payment data captured at checkout.
type BuyerInfo struct {
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Address      string              `json:"address"`
	Payment      enums.PaymentMethod `json:"payment"`
	Installments int                 `json:"installments"`
}

// Defaults is the prefill offered before a profile has been saved.
func Defaults() BuyerInfo {
	return BuyerInfo{
		Name:         "Emilia Test",
		Email:        "emilia@example.com",
		Address:      "Av. Italia 1234, Montevideo",
		Payment:      enums.PaymentMethodDebit,
		Installments: 1,
	}
}

// Normalize trims the text fields, falls back to debit for an unknown payment
// method and to a single installment.
func (b BuyerInfo) Normalize() BuyerInfo {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.TrimSpace(b.Email)
	b.Address = strings.TrimSpace(b.Address)
	if !b.Payment.IsValid() {
		b.Payment = enums.PaymentMethodDebit
	}
	if b.Installments < 1 {
		b.Installments = 1
	}
	return b
}

// Service persists the buyer profile used to prefill checkout.
type Service struct {
	store storage.Store
	logg  *logger.Logger
}

func NewService(store storage.Store, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{store: store, logg: logg}, nil
}

// Load returns the saved profile, or Defaults when none was saved.
func (s *Service) Load(ctx context.Context) (BuyerInfo, error) {
	var info BuyerInfo
	found, err := storage.GetJSON(ctx, s.store, storage.KeyProfile, &info)
	if err != nil {
		return BuyerInfo{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if !found {
		return Defaults(), nil
	}
	return info.Normalize(), nil
}

// Save stores the normalized profile.
func (s *Service) Save(ctx context.Context, info BuyerInfo) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyProfile, info.Normalize()); err != nil {
		s.logg.Error(ctx, "failed to save profile", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	s.logg.Debug(ctx, "profile saved")
	return nil
}
