package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Limits of a stored count. NUMERIC(38,18) holds 20 integer digits and
// Decimal128 holds 34 significant digits.
const (
	MaxFractionDigits    = 18
	MaxIntegerDigits     = 20
	MaxSignificantDigits = 34
)

var (
	unsignedDecimalPattern = regexp.MustCompile(`^\d{1,20}(\.\d{1,18})?$`)
	maxCount               = decimal.New(1, MaxIntegerDigits)
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// decimals are validated through their canonical string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("decimal", validateDecimal)
	_ = v.RegisterValidation("udecimal", validateUnsignedDecimal)

	return &CustomValidator{validator: v}
}

// validateDecimal accepts numbers every product store can hold exactly.
func validateDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	if -d.Exponent() > MaxFractionDigits || d.Abs().GreaterThanOrEqual(maxCount) {
		return false
	}
	return significantDigits(d) <= MaxSignificantDigits
}

// significantDigits counts the coefficient digits, ignoring trailing zeros.
func significantDigits(d decimal.Decimal) int {
	digits := strings.TrimRight(d.Coefficient().String(), "0")
	return len(strings.TrimPrefix(digits, "-"))
}

// validateUnsignedDecimal accepts plain non-negative decimal text such as "12" or "0.5".
func validateUnsignedDecimal(fl validator.FieldLevel) bool {
	return unsignedDecimalPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Var validates a single value against a tag expression.
func (cv *CustomValidator) Var(field interface{}, tag string) error {
	return cv.validator.Var(field, tag)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "decimal":
				errors[field] = field + " must be a number below 1e20 with at most 18 decimal places"
			case "udecimal":
				errors[field] = field + " must be a non-negative number below 1e20 with at most 18 decimal places"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
