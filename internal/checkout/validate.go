package checkout

import (
	"github.com/angelmondragon/moda-storefront/internal/cart"
	"github.com/angelmondragon/moda-storefront/internal/profile"
	"github.com/angelmondragon/moda-storefront/pkg/validators"
)

// Validation messages reported by Validate.
const (
	MsgEmptyCart     = "your cart is empty"
	MsgTotalPositive = "total must be greater than 0"
	MsgNameRequired  = "enter your name"
	MsgEmailInvalid  = "enter a valid email"
	MsgAddressNeeded = "enter your address"
)

type buyerForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

var buyerMessages = validators.Messages{
	"name":    MsgNameRequired,
	"email":   MsgEmailInvalid,
	"address": MsgAddressNeeded,
}

// Validate returns every reason the checkout cannot proceed, in display
// order. An empty slice means the checkout may go ahead.
func Validate(totals cart.Totals, buyer profile.BuyerInfo) []string {
	messages := []string{}
	switch {
	case totals.ItemCount == 0:
		messages = append(messages, MsgEmptyCart)
	case !totals.Total.IsPositive():
		messages = append(messages, MsgTotalPositive)
	}

	buyer = buyer.Normalize()
	form := buyerForm{Name: buyer.Name, Email: buyer.Email, Address: buyer.Address}
	if err := validators.Struct(form, buyerMessages); err != nil {
		messages = append(messages, validators.MessagesOf(err)...)
	}
	return messages
}
