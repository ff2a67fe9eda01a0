package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// decimal fields are compared numerically by gt/gte/lt/lte.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Messages maps a field name to the message reported when any of its rules fail.
type Messages map[string]string

// Struct validates dest and returns a CodeValidation error whose details carry
// the ordered list of human readable messages.
func Struct(dest any, messages Messages) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	seen := map[string]struct{}{}
	list := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		if msg, ok := messages[field]; ok {
			list = append(list, msg)
			continue
		}
		list = append(list, validationMessage(fe))
	}
	return NewFailure(list)
}

// NewFailure builds the validation error carrying messages.
func NewFailure(messages []string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, strings.Join(messages, "; ")).WithDetails(map[string]any{
		"messages": messages,
	})
}

// MessagesOf extracts the message list from a validation error built by this package.
func MessagesOf(err error) []string {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return nil
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return []string{typed.Message()}
	}
	messages, ok := details["messages"].([]string)
	if !ok {
		return []string{typed.Message()}
	}
	return messages
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
