// ABOUTME: Minimal precision formatting for fitness values
// ABOUTME: Formats float64 pairs with just enough digits to show the difference

package main

import (
	"fmt"
	"math"
	"time"
)

const (
	minFitnessPrecision = 2
	maxFitnessPrecision = 10
)

// distinguishingPrecision returns the number of decimals needed to tell curr
// from prev, plus one digit for clarity, capped at maxFitnessPrecision
func distinguishingPrecision(prev, curr float64) int {
	if math.IsNaN(prev) || math.IsNaN(curr) || math.IsInf(prev, 0) || math.IsInf(curr, 0) || prev == curr {
		return minFitnessPrecision
	}

	for precision := 1; precision <= maxFitnessPrecision; precision++ {
		if fmt.Sprintf("%.*f", precision, prev) != fmt.Sprintf("%.*f", precision, curr) {
			return min(precision+1, maxFitnessPrecision)
		}
	}
	return maxFitnessPrecision
}

// FormatMinimalPrecision returns a formatted string of curr with the minimum
// precision needed to distinguish it from prev. Returns a string suitable for
// displaying fitness values in CLI output.
func FormatMinimalPrecision(prev, curr float64) string {
	return fmt.Sprintf("%.*f", distinguishingPrecision(prev, curr), curr)
}

// FormatWithMonotonicPrecision formats curr like FormatMinimalPrecision but
// never with fewer decimals than minPrecision. It returns the precision used
// so successive progress lines keep a stable width.
func FormatWithMonotonicPrecision(prev, curr float64, minPrecision int) (string, int) {
	precision := max(distinguishingPrecision(prev, curr), minPrecision, minFitnessPrecision)
	precision = min(precision, maxFitnessPrecision)
	return fmt.Sprintf("%.*f", precision, curr), precision
}

// formatElapsed right-aligns a duration to 6 characters (max "59m59s")
func formatElapsed(d time.Duration) string {
	var s string
	if d >= time.Minute {
		s = fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		s = fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%6s", s)
}
