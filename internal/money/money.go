// Package money holds the decimal helpers shared by the ledger code and the
// user-facing messages. Amounts are never represented as binary floats.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Scale is the number of fractional digits kept for currency amounts.
const Scale = 2

var printer = message.NewPrinter(language.English)

// Sum adds the given amounts. The sum of nothing is exactly zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// Round rounds d to the currency scale using banker's rounding.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// Format renders d with thousands separators and two decimals, prefixed by
// the currency code: "PKR 13,800.00", "PKR -1,200.50".
func Format(currency string, d decimal.Decimal) string {
	fixed := Round(d).StringFixed(Scale)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, frac, _ := strings.Cut(fixed, ".")
	whole, err := decimal.NewFromString(intPart)
	if err != nil {
		return strings.TrimSpace(currency + " " + sign + fixed)
	}

	grouped := printer.Sprintf("%d", whole.IntPart())
	return strings.TrimSpace(currency + " " + sign + grouped + "." + frac)
}
