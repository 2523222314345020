package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartSubtotal sums price × quantity over cart lines
func CartSubtotal(items []CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.LineTotal())
	}
	return total
}

// FormatINR renders an amount with Indian digit grouping, e.g. ₹1,23,456.5
func FormatINR(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.String()
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if n := len(intPart); n > 3 {
		head, tail := intPart[:n-3], intPart[n-3:]
		// groups of two above the thousands
		for i := len(head) % 2; i <= len(head); i += 2 {
			if i == 0 {
				continue
			}
			start := i - 2
			if start < 0 {
				start = 0
			}
			b.WriteString(head[start:i])
			b.WriteByte(',')
		}
		b.WriteString(tail)
	} else {
		b.WriteString(intPart)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return "₹" + sign + b.String()
}
