package tokenconfig

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"memecoin-creator/internal/domain"
)

// ErrDecimalsRejected is returned when a directly entered decimals value is not applied.
var ErrDecimalsRejected = errors.New("decimals entry rejected")

// DecimalsRejection describes why a decimals entry was not applied.
type DecimalsRejection struct {
	Raw  string
	Kind domain.ErrorKind
}

func (e *DecimalsRejection) Error() string {
	return fmt.Sprintf("%v: %q: %s", ErrDecimalsRejected, e.Raw, e.Kind)
}

func (e *DecimalsRejection) Unwrap() error {
	return ErrDecimalsRejected
}

// DecimalsControl models the decimals stepper of the token form.
//
// The two input paths treat out-of-range values differently:
// stepping clamps silently to [MinDecimals, MaxDecimals],
// while direct entry outside that range is rejected and leaves the value unchanged.
type DecimalsControl struct {
	value int
}

// NewDecimalsControl creates a control holding initial, clamped into range.
func NewDecimalsControl(initial int) *DecimalsControl {
	return &DecimalsControl{value: clampDecimals(initial)}
}

// Value returns the current decimals value.
func (c *DecimalsControl) Value() int {
	return c.value
}

// Increment adds one, stopping at MaxDecimals.
func (c *DecimalsControl) Increment() int {
	c.value = clampDecimals(c.value + 1)
	return c.value
}

// Decrement subtracts one, stopping at MinDecimals.
func (c *DecimalsControl) Decrement() int {
	c.value = clampDecimals(c.value - 1)
	return c.value
}

// Enter applies a directly typed value. Like a browser number field, only the
// leading integer counts: "5.7" enters 5 and "12abc" enters 12.
// Input without a leading integer or out of range returns a *DecimalsRejection
// and keeps the prior value.
func (c *DecimalsControl) Enter(raw string) (int, error) {
	n, ok := leadingInt(raw)
	if !ok {
		return c.value, &DecimalsRejection{Raw: raw, Kind: domain.ErrorNotNumeric}
	}
	if n < MinDecimals || n > MaxDecimals {
		return c.value, &DecimalsRejection{Raw: raw, Kind: domain.ErrorOutOfRange}
	}
	c.value = n
	return c.value, nil
}

// leadingInt parses an optionally signed run of digits after leading
// whitespace and ignores the rest. Magnitudes saturate well above MaxDecimals.
func leadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n <= 10*MaxDecimals {
			n = n*10 + int(s[digits]-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func clampDecimals(n int) int {
	if n < MinDecimals {
		return MinDecimals
	}
	if n > MaxDecimals {
		return MaxDecimals
	}
	return n
}
