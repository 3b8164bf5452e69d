// Package stats holds the ranking and summary statistics shared by the scorers.
//
// Two percentile conventions are in use and must not be unified:
//
//   - [ExclusivePercentiles] ranks a value by the share of values strictly
//     below it. The minimum always ranks 0 and the maximum never reaches 100.
//     Criticality, keystone and funding percentiles use this rank.
//   - [InclusivePercentiles] ranks by average position (ties share the mean of
//     their 1-based positions) divided by n. Values fall in (0, 100] and the
//     maximum ranks exactly 100. Adoption signals use this rank.
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// Number is the set of raw score types the rank functions accept.
type Number interface {
	~int | ~int64 | ~float64
}

// ExclusivePercentiles returns, for every key, the share of all values that
// are strictly lower than its value, scaled to [0, 100).
// An empty map yields an empty (non-nil) map.
func ExclusivePercentiles[K comparable, V Number](scores map[K]V) map[K]float64 {
	out := make(map[K]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	sorted := sortedValues(scores)
	n := float64(len(sorted))
	for k, v := range scores {
		below := sort.SearchFloat64s(sorted, float64(v))
		out[k] = float64(below) / n * 100
	}
	return out
}

// InclusivePercentiles returns the average-rank percentile of every value,
// scaled to (0, 100]. Tied values share the mean of their positions.
// An empty map yields an empty (non-nil) map.
func InclusivePercentiles[K comparable, V Number](scores map[K]V) map[K]float64 {
	out := make(map[K]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	sorted := sortedValues(scores)
	n := float64(len(sorted))
	for k, v := range scores {
		x := float64(v)
		lo := sort.SearchFloat64s(sorted, x)
		hi := sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
		// 1-based positions lo+1..hi average to (lo+1+hi)/2.
		avg := float64(lo+1+hi) / 2
		out[k] = avg / n * 100
	}
	return out
}

func sortedValues[K comparable, V Number](scores map[K]V) []float64 {
	vals := make([]float64, 0, len(scores))
	for _, v := range scores {
		vals = append(vals, float64(v))
	}
	sort.Float64s(vals)
	return vals
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m, err := mstats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// Median returns the median of xs, or 0 for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m, err := mstats.Median(xs)
	if err != nil {
		return 0
	}
	return m
}

// Values returns the values of a score map as float64s in unspecified order.
func Values[K comparable, V Number](scores map[K]V) []float64 {
	out := make([]float64, 0, len(scores))
	for _, v := range scores {
		out = append(out, float64(v))
	}
	return out
}
