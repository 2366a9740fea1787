// Package money provides shared constants and helpers for dollar amounts
package money

import (
	"fmt"
	"math"
	"strings"
)

// MonthsPerYear converts between monthly and annual amounts
const MonthsPerYear = 12

// Annualize converts a monthly amount to an annual amount
// Inbound housing and childcare costs are monthly; the engine expects annual
func Annualize(monthly float64) float64 {
	return monthly * MonthsPerYear
}

// FormatUSD renders an amount as a whole-dollar string with thousands
// separators, e.g. 12345.6 -> "$12,346". Negative amounts render as "-$...".
func FormatUSD(v float64) string {
	neg := v < 0
	n := int64(math.Round(math.Abs(v)))

	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
