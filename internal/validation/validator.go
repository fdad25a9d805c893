// Package validation holds the field-level rules applied to forms before any
// request leaves the process.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"resto-ledger/internal/ledger"
	"resto-ledger/internal/model"

	"github.com/go-playground/validator/v10"
)

// minApproxWeightG is the smallest per-unit weight accepted, in grams.
const minApproxWeightG = 1

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// New builds a validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "isodate", validateISODate)
	v.RegisterStructValidation(validateIngredientLine, model.IngredientLine{})

	return &Validator{validate: v}
}

// Struct validates s and returns a *model.ValidationError describing every
// failing field, or nil.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return &model.ValidationError{Fields: FormatValidationError(err)}
}

// FormatValidationError formats validation errors into a user-friendly map
// keyed by the JSON path of the field.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := fieldPath(e.Namespace())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "email":
			errs[field] = "Invalid email format"
		case "isodate":
			errs[field] = "Must be a date formatted YYYY-MM-DD"
		case "oneof":
			errs[field] = fmt.Sprintf("Must be one of: %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s characters", e.Param())
		case "min":
			if e.Kind().String() == "slice" {
				errs[field] = fmt.Sprintf("Must contain at least %s entries", e.Param())
			} else {
				errs[field] = fmt.Sprintf("Must be at least %s characters", e.Param())
			}
		case "approxweight":
			errs[field] = "Approximate weight per unit is required (grams)"
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// fieldPath drops the root struct name from a validator namespace:
// "PurchaseForm.lines[0].name" becomes "lines[0].name".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// mustRegister adds a custom tag. Registration only fails for a malformed
// tag, which is a programming error.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: failed to register %q: %v", tag, err))
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	return ledger.ValidDate(fl.Field().String())
}

// validateIngredientLine requires a per-unit weight only for counted items.
func validateIngredientLine(sl validator.StructLevel) {
	line := sl.Current().Interface().(model.IngredientLine)
	if line.Unit == model.UnitCount && line.ApproxWeightG < minApproxWeightG {
		sl.ReportError(line.ApproxWeightG, "approxWeightG", "ApproxWeightG", "approxweight", "")
	}
}
