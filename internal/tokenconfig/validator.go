// Package tokenconfig validates and normalises token-creation requests.
package tokenconfig

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"memecoin-creator/internal/domain"
)

// Field limits.
const (
	MaxNameLength   = 50
	MaxSymbolLength = 10
	MinDecimals     = 1
	MaxDecimals     = 18

	// maxSupplyExponent bounds exponent notation so canonical strings stay small.
	maxSupplyExponent = 77
)

// Custom validator tags for the initial supply.
const (
	tagNumericSupply  = "numeric_supply"
	tagPositiveSupply = "positive_supply"
)

// basicForm is the subset of TokenConfigInput that carries rules.
// Tag names are the form identifiers so errors map straight to domain.Field.
type basicForm struct {
	Name          string `json:"name" validate:"required,max=50"`
	Symbol        string `json:"symbol" validate:"required,max=10"`
	InitialSupply string `json:"initialSupply" validate:"numeric_supply,positive_supply"`
	Decimals      int    `json:"decimals" validate:"min=1,max=18"`
}

// ErrSupplyExponent is returned for supplies written with an exponent too large to represent.
var ErrSupplyExponent = errors.New("initial supply exponent out of range")

// Validator checks TokenConfigInput values.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the token rules registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation(tagNumericSupply, func(fl validator.FieldLevel) bool {
		_, err := ParseSupply(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation(tagPositiveSupply, func(fl validator.FieldLevel) bool {
		d, err := ParseSupply(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	return &Validator{validate: v}
}

var defaultValidator = New()

// Validate checks input with the package default Validator.
func Validate(input domain.TokenConfigInput) (domain.TokenConfig, domain.FieldErrors) {
	return defaultValidator.Validate(input)
}

// Validate checks every field of input and returns either a normalised
// configuration or the full set of field errors, never both.
// When advanced settings are off the advanced flags are dropped.
func (v *Validator) Validate(input domain.TokenConfigInput) (domain.TokenConfig, domain.FieldErrors) {
	form := basicForm{
		Name:          input.Name,
		Symbol:        input.Symbol,
		InitialSupply: input.InitialSupply,
		Decimals:      input.Decimals,
	}

	if fe := v.check(form); len(fe) > 0 {
		return domain.TokenConfig{}, fe
	}

	// Already known to parse.
	supply, _ := ParseSupply(input.InitialSupply)

	basic := domain.BasicFields{
		Name:          input.Name,
		Symbol:        input.Symbol,
		InitialSupply: supply.String(),
		Decimals:      uint8(input.Decimals),
	}

	if !input.AdvancedEnabled {
		return domain.NewBasicConfig(basic), nil
	}

	return domain.NewAdvancedConfig(basic, domain.AdvancedFields{
		CanBurn:               boolValue(input.CanBurn),
		CanMint:               boolValue(input.CanMint),
		CanPause:              boolValue(input.CanPause),
		BlacklistEnabled:      boolValue(input.BlacklistEnabled),
		DeflationEnabled:      boolValue(input.DeflationEnabled),
		SuperDeflationEnabled: boolValue(input.SuperDeflationEnabled),
	}), nil
}

// check runs the struct rules and converts failures to FieldErrors.
func (v *Validator) check(form basicForm) domain.FieldErrors {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Struct only fails this way on a non-struct argument.
		panic(err)
	}

	fe := make(domain.FieldErrors, len(verrs))
	for _, e := range verrs {
		if kind, ok := kindFor(e); ok {
			fe[domain.Field(e.Field())] = kind
		}
	}
	return fe
}

// kindFor maps a failed validator tag to an ErrorKind.
func kindFor(e validator.FieldError) (domain.ErrorKind, bool) {
	switch e.Tag() {
	case "required":
		return domain.ErrorEmptyField, true
	case tagNumericSupply:
		return domain.ErrorNotNumeric, true
	case tagPositiveSupply:
		return domain.ErrorNotPositive, true
	case "min", "max":
		if e.Kind() == reflect.String {
			return domain.ErrorTooLong, true
		}
		return domain.ErrorOutOfRange, true
	}
	return "", false
}

// ParseSupply parses an initial supply string.
// Surrounding whitespace is ignored and an empty value reads as zero,
// matching how the form coerces the field to a number.
func ParseSupply(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp > maxSupplyExponent || exp < -maxSupplyExponent {
		return decimal.Zero, ErrSupplyExponent
	}
	return d, nil
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
