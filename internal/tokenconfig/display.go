package tokenconfig

import (
	"strings"

	"github.com/dustin/go-humanize"

	"memecoin-creator/internal/domain"
)

// displayFractionDigits is the most fractional digits shown in a supply display.
const displayFractionDigits = 3

// ApproxTokenCount formats an initial supply with thousands separators
// ("21000000" -> "21,000,000"), rounding to at most three fractional digits.
// It returns "" when the supply cannot be read as a number.
// The result is display-only and says nothing about validity.
func ApproxTokenCount(initialSupply string) string {
	d, err := ParseSupply(initialSupply)
	if err != nil {
		return ""
	}

	d = d.Round(displayFractionDigits)
	negative := d.IsNegative()
	d = d.Abs()

	intPart := d.Truncate(0)
	out := humanize.BigComma(intPart.BigInt())

	if frac := d.Sub(intPart); !frac.IsZero() {
		// "0.125" -> ".125"
		out += strings.TrimPrefix(frac.String(), "0")
	}
	if negative {
		out = "-" + out
	}
	return out
}

// DefaultInput returns the values the token form starts with.
func DefaultInput() domain.TokenConfigInput {
	return domain.TokenConfigInput{
		Name:          "",
		Symbol:        "",
		InitialSupply: "21000000",
		Decimals:      MaxDecimals,
	}
}
