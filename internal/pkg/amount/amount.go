// Package amount converts between human-readable decimal strings and integer
// token base units. All base-unit arithmetic is done on big.Int: pool totals
// for 18-decimal tokens routinely exceed float64's safe integer range, so no
// float path is allowed here.
package amount

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// ZeroShareDisplay is the zero string used by share and borrow displays,
// which render five fractional digits instead of the bare "0".
const ZeroShareDisplay = "0.00000"

var ten = big.NewInt(10)

// pow10 returns 10^n as a big.Int.
func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(n)), nil)
}

// ToBaseUnits parses a human-entered decimal amount and scales it by
// 10^decimals, truncating toward zero. It returns entity.ErrInvalidAmount
// when the input is not a plain decimal number or is not strictly positive.
// Truncation is intentional: rounding up could overdraw a balance.
func ToBaseUnits(human string, decimals uint8) (*big.Int, error) {
	intPart, fracPart, err := splitDecimal(human)
	if err != nil {
		return nil, err
	}

	// Truncate the fractional part to the token's resolution.
	if len(fracPart) > int(decimals) {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", int(decimals)-len(fracPart))

	result, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidAmount, human)
	}
	return result, nil
}

// splitDecimal validates the textual form and returns the integer and
// fractional digit strings. The full-precision value must be > 0 even when
// the scaled result truncates to zero.
func splitDecimal(human string) (string, string, error) {
	s := strings.TrimSpace(human)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty input", entity.ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if strings.HasPrefix(s, "-") {
		return "", "", fmt.Errorf("%w: %q", entity.ErrInvalidAmount, human)
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return "", "", fmt.Errorf("%w: %q", entity.ErrInvalidAmount, human)
		}
	}
	if intPart == "" && fracPart == "" {
		return "", "", fmt.Errorf("%w: %q", entity.ErrInvalidAmount, human)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return "", "", fmt.Errorf("%w: %q", entity.ErrInvalidAmount, human)
	}
	if !hasNonZeroDigit(intPart) && !hasNonZeroDigit(fracPart) {
		return "", "", fmt.Errorf("%w: must be greater than zero", entity.ErrInvalidAmount)
	}
	if intPart == "" {
		intPart = "0"
	}
	return intPart, fracPart, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func hasNonZeroDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return true
		}
	}
	return false
}

// IsValid reports whether the input would be accepted by ToBaseUnits.
func IsValid(human string) bool {
	_, _, err := splitDecimal(human)
	return err == nil
}

// ToHuman formats a base-unit value at full resolution, trimming trailing
// zeros. A zero balance formats as the literal "0".
func ToHuman(base *big.Int, decimals uint8) string {
	if base == nil || base.Sign() == 0 {
		return "0"
	}

	quo, rem := new(big.Int).QuoRem(base, pow10(decimals), new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := rem.String()
	frac = strings.Repeat("0", int(decimals)-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}

// DisplayDecimals derives the default display precision for a token: high
// precision tokens get a short tail to avoid noise, low precision tokens
// keep their full resolution.
func DisplayDecimals(decimals uint8) int {
	switch {
	case decimals >= 18:
		return 4
	case decimals >= 6:
		return 2
	default:
		return int(decimals)
	}
}

// ToHumanFixed formats a base-unit value with exactly displayDecimals
// fractional digits, truncating beyond them. Pass a negative displayDecimals
// to use the token's default display precision.
func ToHumanFixed(base *big.Int, decimals uint8, displayDecimals int) string {
	if displayDecimals < 0 {
		displayDecimals = DisplayDecimals(decimals)
	}

	quo, rem := new(big.Int).QuoRem(orZero(base), pow10(decimals), new(big.Int))
	if displayDecimals == 0 {
		return quo.String()
	}

	// At decimals == 0 the remainder is always 0 and its single digit must
	// not be padded away; pad only up to the token's resolution.
	frac := rem.String()
	if pad := int(decimals) - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	if len(frac) > displayDecimals {
		frac = frac[:displayDecimals]
	} else {
		frac += strings.Repeat("0", displayDecimals-len(frac))
	}
	return quo.String() + "." + frac
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
