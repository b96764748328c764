package ahp

import "math"

// SaatyValues is the discrete comparison set every off-diagonal matrix entry
// is drawn from, in ascending order.
var SaatyValues = [...]float64{1.0 / 9, 1.0 / 7, 1.0 / 5, 1.0 / 3, 1, 3, 5, 7, 9}

// saatyBreaks maps a ratio r >= 1 to its scale value: the first row whose
// lower bound r reaches wins. Intervals are closed below, open above.
var saatyBreaks = [...]struct {
	lower float64
	value float64
}{
	{lower: 6.5, value: 9},
	{lower: 4.5, value: 7},
	{lower: 2.5, value: 5},
	{lower: 1.25, value: 3},
	{lower: 1, value: 1},
}

// MapRatio converts a score ratio into a Saaty comparison value.
// Non-finite or non-positive ratios map to the neutral 1. Ratios below 1 are
// inverted, mapped, and inverted back so MapRatio(r) == 1/MapRatio(1/r).
func MapRatio(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 1
	}
	if r < 1 {
		return 1 / upperScale(1/r)
	}
	return upperScale(r)
}

// upperScale maps r >= 1 onto {1,3,5,7,9}.
func upperScale(r float64) float64 {
	for _, b := range saatyBreaks {
		if r >= b.lower {
			return b.value
		}
	}
	return 1
}
