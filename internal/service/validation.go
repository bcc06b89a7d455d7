package service

import (
	"reflect"
	"strings"

	producterrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/abgdnv/producthub/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// violationMessages maps a json field name, or "field.rule" for a rule with its own message,
// to the message reported when validation fails.
var violationMessages = map[string]string{
	"name":             "Product name is required.",
	"description":      "Product description is required.",
	"price":            "Price must be greater than 0.",
	"price.decimal128": "Price must have at most 34 significant digits.",
	"units":            "Units must be greater than 0.",
}

// Validator checks candidate product fields. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator that reports fields by their json names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"notblank":   validators.NotBlank,
		"dpositive":  decimalPositive,
		"decimal128": decimalStorable,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &Validator{validate: v}
}

// Validate returns one violation per failing field, in field order. Nil means the fields are acceptable.
func (v *Validator) Validate(fields ProductFieldsDto) []producterrors.Violation {
	err := v.validate.Struct(fields)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []producterrors.Violation{{Field: "", Message: err.Error()}}
	}
	violations := make([]producterrors.Violation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msg, ok := violationMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = violationMessages[fe.Field()]
		}
		if !ok {
			msg = fe.Error()
		}
		violations = append(violations, producterrors.Violation{Field: fe.Field(), Message: msg})
	}
	return violations
}

func decimalPositive(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	return ok && d.IsPositive()
}

// decimalStorable accepts prices the store keeps exactly.
func decimalStorable(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	_, ok = store.EncodePrice(d)
	return ok
}
