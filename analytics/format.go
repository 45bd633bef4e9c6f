package analytics

import (
	"fmt"
	"math"
)

// FormatINR renders a monetary magnitude in Indian business shorthand
// (₹1.25 Cr, ₹3.40 L, ₹75.00 K). Used when building narrative context;
// API payloads carry raw magnitudes.
func FormatINR(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e7:
		return fmt.Sprintf("%s₹%.2f Cr", sign, v/1e7)
	case v >= 1e5:
		return fmt.Sprintf("%s₹%.2f L", sign, v/1e5)
	case v >= 1e3:
		return fmt.Sprintf("%s₹%.2f K", sign, v/1e3)
	default:
		return fmt.Sprintf("%s₹%.0f", sign, math.Round(v))
	}
}

// FormatPercent renders a 0..1 ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
