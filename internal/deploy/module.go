// Package deploy turns a validated token configuration into the parameters
// of a MemeToken contract deployment and checks that a network is ready for it.
// It never signs or submits transactions.
package deploy

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/tokenconfig"
)

// ContractName is the deployed contract.
const ContractName = "MemeToken"

// Defaults used by the deployment module when no configuration is supplied.
const (
	DefaultName          = "MemeToken"
	DefaultSymbol        = "MEME"
	DefaultDescription   = "A fun meme token"
	DefaultImage         = "https://example.com/meme-image.png"
	DefaultInitialSupply = "1000"
	DefaultMaxSupply     = "1000000"
	DefaultDecimals      = 18
)

var (
	// ErrFractionalUnits is returned when a value has more fraction digits than decimals allow.
	ErrFractionalUnits = errors.New("value is not representable in base units")
	// ErrNegativeUnits is returned for values below zero.
	ErrNegativeUnits = errors.New("value must not be negative")
	// ErrMaxBelowInitial is returned when maxSupply < initialSupply.
	ErrMaxBelowInitial = errors.New("max supply is below initial supply")
	// ErrInvalidConfig is returned when a token config does not pass validation.
	ErrInvalidConfig = errors.New("token config is invalid")
)

// ConstructorArgs are the MemeToken constructor arguments, in order.
type ConstructorArgs struct {
	Name          string
	Symbol        string
	Description   string
	Image         string
	InitialSupply *big.Int // base units
	MaxSupply     *big.Int // base units
}

// Values returns the arguments in constructor order.
func (a ConstructorArgs) Values() []interface{} {
	return []interface{}{a.Name, a.Symbol, a.Description, a.Image, a.InitialSupply, a.MaxSupply}
}

// Module is a declarative deployment of one contract.
type Module struct {
	Contract string
	Decimals uint8
	Args     ConstructorArgs
	Features domain.AdvancedFields
	Advanced bool
}

// Options supplies the constructor arguments a TokenConfig does not carry.
type Options struct {
	Description string
	Image       string
	MaxSupply   string // whole tokens; empty means equal to initial supply
}

// ParseUnits converts a decimal amount of whole tokens into base units,
// value × 10^decimals. The result must be an integer.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("parse units %q: %w", value, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("parse units %q: %w", value, ErrNegativeUnits)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("parse units %q at %d decimals: %w", value, decimals, ErrFractionalUnits)
	}
	return scaled.BigInt(), nil
}

// FormatUnits converts base units back to a decimal string of whole tokens.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// DefaultModule returns the module deployed when nothing is configured.
func DefaultModule() *Module {
	initial, _ := ParseUnits(DefaultInitialSupply, DefaultDecimals)
	maxSupply, _ := ParseUnits(DefaultMaxSupply, DefaultDecimals)
	return &Module{
		Contract: ContractName,
		Decimals: DefaultDecimals,
		Args: ConstructorArgs{
			Name:          DefaultName,
			Symbol:        DefaultSymbol,
			Description:   DefaultDescription,
			Image:         DefaultImage,
			InitialSupply: initial,
			MaxSupply:     maxSupply,
		},
	}
}

// FromInput validates input and builds a module from the result.
func FromInput(input domain.TokenConfigInput, opts Options) (*Module, error) {
	cfg, errs := tokenconfig.Validate(input)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}
	return FromConfig(cfg, opts)
}

// FromConfig builds a module from an already validated configuration.
func FromConfig(cfg domain.TokenConfig, opts Options) (*Module, error) {
	b := cfg.Basic

	initial, err := ParseUnits(b.InitialSupply, b.Decimals)
	if err != nil {
		return nil, fmt.Errorf("initial supply: %w", err)
	}

	maxSupply := new(big.Int).Set(initial)
	if opts.MaxSupply != "" {
		maxSupply, err = ParseUnits(opts.MaxSupply, b.Decimals)
		if err != nil {
			return nil, fmt.Errorf("max supply: %w", err)
		}
		if maxSupply.Cmp(initial) < 0 {
			return nil, ErrMaxBelowInitial
		}
	}

	description := opts.Description
	if description == "" {
		description = DefaultDescription
	}
	image := opts.Image
	if image == "" {
		image = DefaultImage
	}

	return &Module{
		Contract: ContractName,
		Decimals: b.Decimals,
		Args: ConstructorArgs{
			Name:          b.Name,
			Symbol:        b.Symbol,
			Description:   description,
			Image:         image,
			InitialSupply: initial,
			MaxSupply:     maxSupply,
		},
		Features: cfg.Flags(),
		Advanced: cfg.AdvancedEnabled(),
	}, nil
}
