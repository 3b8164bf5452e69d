package narrative

import (
	"fmt"
	"math"
)

// Ordinal formats a percentile as "87th", "21st", "2nd".
func Ordinal(pct float64) string {
	n := int(math.Round(pct))
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Percent formats a fraction in [0, 1] as a whole percentage.
func Percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func verdict(passed bool) string {
	if passed {
		return "[PASS]"
	}
	return "[FAIL]"
}
