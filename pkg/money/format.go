package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Storefront defaults: Uruguayan pesos rendered for es-UY.
const (
	DefaultLocale   = "es-UY"
	DefaultCurrency = "UYU"
)

// Formatter renders monetary amounts for a single locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a formatter for a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// MustFormatter is NewFormatter for compile-time constants.
func MustFormatter(locale, code string) *Formatter {
	f, err := NewFormatter(locale, code)
	if err != nil {
		panic(err)
	}
	return f
}

// Format renders the amount with the currency symbol.
func (f *Formatter) Format(amount decimal.Decimal) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount.InexactFloat64())))
}

// FormatISO renders the amount prefixed with the ISO currency code.
func (f *Formatter) FormatISO(amount decimal.Decimal) string {
	return f.printer.Sprint(currency.ISO(f.unit.Amount(amount.InexactFloat64())))
}

// Currency returns the ISO code this formatter renders.
func (f *Formatter) Currency() string {
	return f.unit.String()
}
