package util //nolint:revive // package name util hosts shared formatting helpers used by screen view models

import (
	"math"
	"strconv"
	"strings"
)

const (
	crore = 10_000_000
	lakh  = 100_000
)

// FormatINR formats an amount in rupees the way listings display it:
// crores and lakhs with two decimals, smaller amounts with Indian digit grouping.
func FormatINR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "₹0"
	}
	switch {
	case amount >= crore:
		return "₹" + strconv.FormatFloat(amount/crore, 'f', 2, 64) + "Cr"
	case amount >= lakh:
		return "₹" + strconv.FormatFloat(amount/lakh, 'f', 2, 64) + "L"
	default:
		return "₹" + groupIndian(amount)
	}
}

// groupIndian renders amount with en-IN grouping (last three digits, then
// pairs) and at most three fraction digits.
func groupIndian(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatFloat(math.Round(amount*1000)/1000, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	if len(intPart) <= 3 {
		b.WriteString(intPart)
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		lead := len(head) % 2
		if lead > 0 {
			b.WriteString(head[:lead])
		}
		for i := lead; i < len(head); i += 2 {
			if b.Len() > len(sign) {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
