package utils

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders amount with two decimal places, "." as thousands
// separator and "," as decimal separator, e.g. "R$ 1.234,50".
func FormatMoney(symbol string, amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.Grow(len(symbol) + len(intPart) + len(intPart)/3 + 5)
	if neg {
		b.WriteString("-")
	}
	if symbol != "" {
		b.WriteString(symbol)
		b.WriteString(" ")
	}

	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(fracPart)

	return b.String()
}

// DiscountPercent is round((oldPrice-price)/oldPrice*100). It returns
// false when there is no valid strike-through price.
func DiscountPercent(price float64, oldPrice *float64) (int, bool) {
	if oldPrice == nil || *oldPrice <= price || *oldPrice <= 0 {
		return 0, false
	}
	return int(math.Round((*oldPrice - price) / *oldPrice * 100)), true
}
