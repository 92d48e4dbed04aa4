package analysis

import (
	"math"
	"sort"

	"gosus/domain/core"
)

// Quantile returns the p-th quantile of values using the (n+1)p position
// with linear interpolation between neighbouring order statistics. values is
// expected in ascending order; an unsorted slice is sorted on a copy.
//
// For very small samples the position is clamped to [1, n], so the lowest
// quantiles of a single observation are that observation.
func Quantile(values []float64, p float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, core.NewInvalidArgumentError("quantile of an empty sample")
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, core.NewInvalidArgumentError("quantile fraction must be within [0, 1]")
	}

	sorted := values
	if !sort.Float64sAreSorted(values) {
		sorted = make([]float64, n)
		copy(sorted, values)
		sort.Float64s(sorted)
	}

	position := float64(n+1) * p
	position = math.Max(1, math.Min(float64(n), position))

	lo := int(math.Floor(position)) - 1
	hi := int(math.Ceil(position)) - 1
	if lo == hi {
		return sorted[lo], nil
	}
	frac := position - math.Floor(position)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, nil
}

// Quartiles returns Q1, the median and Q3 of values.
func Quartiles(values []float64) (q1, median, q3 float64, err error) {
	sorted := sortedCopy(values)
	if q1, err = Quantile(sorted, 0.25); err != nil {
		return 0, 0, 0, err
	}
	median, _ = Quantile(sorted, 0.5)
	q3, _ = Quantile(sorted, 0.75)
	return q1, median, q3, nil
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
