// Package money converts between major currency units and the integer minor units
// (kobo) used for all balance arithmetic.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitsPerMajor is the number of minor units in one major unit
const MinorUnitsPerMajor = 100

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// ToMinorUnits converts a major-unit value to minor units, rounding half away from zero.
// The float is read through its shortest decimal representation, so 10.15 becomes 1015.
func ToMinorUnits(major float64) int64 {
	return decimal.NewFromFloat(major).Shift(2).Round(0).IntPart()
}

// ToMajorUnits converts minor units back to a major-unit value
func ToMajorUnits(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}

// ParseResult is the structured outcome of parsing user supplied numeric input
type ParseResult struct {
	Success bool   `json:"success"`
	Value   int64  `json:"value"` // minor units
	Error   string `json:"error,omitempty"`
}

func parseFailure(msg string) ParseResult {
	return ParseResult{Success: false, Error: msg}
}

// ParseAmount parses a major-unit string such as "1,250.50" or "₦300" into minor units.
// It never returns an error value; failures are described in the result.
func ParseAmount(raw string) ParseResult {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "₦")
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "NGN"), "ngn")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return parseFailure("Amount is required")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return parseFailure("Amount must be a valid number")
	}
	if d.IsNegative() {
		return parseFailure("Amount cannot be negative")
	}
	if !d.Round(2).Equal(d) {
		return parseFailure("Amount cannot have more than 2 decimal places")
	}

	minor := d.Shift(2)
	if minor.GreaterThan(maxMinor) {
		return parseFailure("Amount is too large")
	}

	return ParseResult{Success: true, Value: minor.IntPart()}
}

// Format renders minor units as a major-unit string with thousands separators, e.g. "1,250.50"
func Format(minor int64) string {
	fixed := decimal.New(minor, -2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + "." + frac
}
